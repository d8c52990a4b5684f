// Package schema embeds the JSON schemas of the persisted task collections.
package schema

import _ "embed"

const (
	TasksV2URL = "taskboard://schema/tasks_v2.schema.json"
	TasksV1URL = "taskboard://schema/tasks_v1.schema.json"
)

//go:embed tasks_v2.schema.json
var TasksV2 string

//go:embed tasks_v1.schema.json
var TasksV1 string
