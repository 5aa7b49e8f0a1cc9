package trace

import (
	"encoding/json"
	"fmt"
	"io"
)

// DecodeRecords parses a network-log artifact: a JSON array of records as
// produced by the gatherer. The ordered Priority is derived from the
// protocol priority name after decode.
func DecodeRecords(r io.Reader) ([]NetworkRecord, error) {
	var records []NetworkRecord
	dec := json.NewDecoder(r)
	if err := dec.Decode(&records); err != nil {
		return nil, fmt.Errorf("decode network records: %w", err)
	}
	for i := range records {
		records[i].Priority = ParsePriority(records[i].PriorityName)
		if records[i].ResourceType == "" {
			records[i].ResourceType = ResourceOther
		}
	}
	return records, nil
}

// DecodeTasks parses a main-thread task tree artifact: a JSON array of
// top-level tasks with nested children.
func DecodeTasks(r io.Reader) ([]*MainThreadTask, error) {
	var tasks []*MainThreadTask
	dec := json.NewDecoder(r)
	if err := dec.Decode(&tasks); err != nil {
		return nil, fmt.Errorf("decode main-thread tasks: %w", err)
	}
	return tasks, nil
}
