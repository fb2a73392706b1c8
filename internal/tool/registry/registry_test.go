package registry

import (
	"context"
	"testing"

	"uav-platform/internal/tool"
)

type fakeTool struct {
	name string
}

func (f *fakeTool) Name() string        { return f.name }
func (f *fakeTool) Description() string { return "fake " + f.name }
func (f *fakeTool) Schema() tool.Schema { return tool.Schema{Type: "object"} }
func (f *fakeTool) Invoke(ctx context.Context, args map[string]any) (any, error) {
	return f.name, nil
}

func TestRegistryRegisterGet(t *testing.T) {
	r := NewRegistry()
	r.Register(&fakeTool{name: "take_off"})

	got, ok := r.Get("take_off")
	if !ok {
		t.Fatal("take_off not found")
	}
	if got.Name() != "take_off" {
		t.Errorf("Name() = %s", got.Name())
	}

	if _, ok := r.Get("self_destruct"); ok {
		t.Error("unexpected tool self_destruct")
	}
}

func TestRegistryListSorted(t *testing.T) {
	r := NewRegistry()
	r.Register(&fakeTool{name: "land"})
	r.Register(&fakeTool{name: "broadcast"})
	r.Register(&fakeTool{name: "take_off"})

	names := r.Names()
	want := []string{"broadcast", "land", "take_off"}
	if len(names) != len(want) {
		t.Fatalf("Names() = %v", names)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("Names()[%d] = %s, want %s", i, names[i], want[i])
		}
	}
}

func TestSchemasForLLM(t *testing.T) {
	r := NewRegistry()
	r.Register(&fakeTool{name: "hover"})

	schemas := r.SchemasForLLM()
	if len(schemas) != 1 {
		t.Fatalf("len = %d", len(schemas))
	}
	if schemas[0].Name != "hover" || schemas[0].Description == "" {
		t.Errorf("schema = %+v", schemas[0])
	}
	if schemas[0].Parameters.Type != "object" {
		t.Errorf("parameters = %+v", schemas[0].Parameters)
	}
}
