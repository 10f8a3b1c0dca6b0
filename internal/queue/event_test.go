package queue

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTopicForPath(t *testing.T) {
	cases := map[string]string{
		"/v1/routes":               "v1_routes",
		"/v1/routes/:id/schedules": "v1_routes_id_schedules",
		"/healthz":                 "healthz",
		"/":                        "",
		"":                         "",
	}
	for path, want := range cases {
		assert.Equal(t, want, TopicForPath(path), "path %q", path)
	}
}
