package testutil

import (
	"context"
	"sync"

	"github.com/zclconf/go-cty/cty"

	"github.com/vk/vigilgo/internal/registry"
)

// SimpleModule is a test helper for easily creating a mock module that
// registers ad-hoc runners under caller-chosen names.
type SimpleModule struct {
	TaskName string
	Task     registry.Task

	SourceName string
	Source     registry.Source

	HandlerName string
	Handler     registry.Handler
}

// Register implements the registry.Module interface.
func (m *SimpleModule) Register(r *registry.Registry) {
	if m.TaskName != "" && m.Task != nil {
		r.RegisterTask(m.TaskName, m.Task)
	}
	if m.SourceName != "" && m.Source != nil {
		r.RegisterSource(m.SourceName, m.Source)
	}
	if m.HandlerName != "" && m.Handler != nil {
		r.RegisterHandler(m.HandlerName, m.Handler)
	}
}

// ViolationRecord is one captured handler invocation.
type ViolationRecord struct {
	Snapshot cty.Value
	Violated []string
	Handler  string
}

// Recorder captures violation handler invocations across goroutines.
type Recorder struct {
	mu      sync.Mutex
	records []ViolationRecord
}

// Handler returns a registry.Handler that appends every invocation under the
// given handler name.
func (rec *Recorder) Handler(name string) registry.Handler {
	return func(_ context.Context, snapshot cty.Value, violated []string, _ registry.Args) error {
		rec.mu.Lock()
		defer rec.mu.Unlock()
		rec.records = append(rec.records, ViolationRecord{
			Snapshot: snapshot,
			Violated: append([]string(nil), violated...),
			Handler:  name,
		})
		return nil
	}
}

// Records returns a copy of the captured invocations in order.
func (rec *Recorder) Records() []ViolationRecord {
	rec.mu.Lock()
	defer rec.mu.Unlock()
	return append([]ViolationRecord(nil), rec.records...)
}
