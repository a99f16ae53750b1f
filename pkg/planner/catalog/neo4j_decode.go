package catalog

import (
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/pkg/errors"

	"github.com/askiada/go-toolplan/pkg/planner/model"
)

var ErrUnexpectedValue = errors.New("unexpected value type")

func value(record *neo4j.Record, key string) any {
	v, _ := record.Get(key)

	return v
}

// decodeString accepts a string or a null value.
func decodeString(v any) (string, error) {
	switch typed := v.(type) {
	case nil:
		return "", nil
	case string:
		return typed, nil
	default:
		return "", errors.Wrapf(ErrUnexpectedValue, "want string, got %T", v)
	}
}

// decodeFloat accepts the numeric types returned by the driver. Null is 0.
func decodeFloat(v any) (float64, error) {
	switch typed := v.(type) {
	case nil:
		return 0, nil
	case int64:
		return float64(typed), nil
	case int:
		return float64(typed), nil
	case float64:
		return typed, nil
	default:
		return 0, errors.Wrapf(ErrUnexpectedValue, "want number, got %T", v)
	}
}

// decodeStrings accepts a list of strings, nulls inside the list are skipped.
func decodeStrings(v any) ([]string, error) {
	if v == nil {
		return []string{}, nil
	}

	list, ok := v.([]any)
	if !ok {
		return nil, errors.Wrapf(ErrUnexpectedValue, "want list, got %T", v)
	}

	out := make([]string, 0, len(list))

	for _, item := range list {
		if item == nil {
			continue
		}

		str, ok := item.(string)
		if !ok {
			return nil, errors.Wrapf(ErrUnexpectedValue, "want string in list, got %T", item)
		}

		out = append(out, str)
	}

	return out, nil
}

func decodeTool(record *neo4j.Record) (model.Tool, error) {
	id, err := decodeString(value(record, "id"))
	if err != nil {
		return model.Tool{}, errors.Wrap(err, "unable to decode tool id")
	}

	name, err := decodeString(value(record, "name"))
	if err != nil {
		return model.Tool{}, errors.Wrapf(err, "unable to decode name of tool %s", id)
	}

	citation, err := decodeFloat(value(record, "citation"))
	if err != nil {
		return model.Tool{}, errors.Wrapf(err, "unable to decode citation of tool %s", id)
	}

	return model.Tool{ID: model.ToolID(id), Name: name, Citation: citation}, nil
}

func idParams(ids []model.ToolID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = string(id)
	}

	return out
}

func projectParams(projects []model.ProjectID) []string {
	out := make([]string, len(projects))
	for i, project := range projects {
		out[i] = string(project)
	}

	return out
}

func stringParams(values []string) []string {
	out := make([]string, len(values))
	copy(out, values)

	return out
}
