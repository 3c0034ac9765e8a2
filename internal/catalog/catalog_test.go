package catalog

import "testing"

func TestResolveSingleModel(t *testing.T) {
	c := New(nil)
	names, err := c.Resolve(ModelDeepSeek)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if len(names) != 1 || names[0] != "deepseek-r1:70b" {
		t.Fatalf("unexpected names: %v", names)
	}
}

func TestResolveDualFansOut(t *testing.T) {
	c := New(nil)
	names, err := c.Resolve(ModelDual)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if len(names) != 2 {
		t.Fatalf("expected 2 gateway names for dual, got %v", names)
	}
	for _, n := range names {
		if n == ModelDual {
			t.Fatalf("dual must never be sent as a gateway id")
		}
	}
}

func TestResolveUnknown(t *testing.T) {
	c := New(nil)
	_, err := c.Resolve("gpt-9")
	if err == nil || !IsModelNotFound(err) {
		t.Fatalf("expected model not found, got %v", err)
	}
}

func TestListReturnsCopy(t *testing.T) {
	c := New(nil)
	out := c.List()
	out[0].ID = "mutated"
	if c.List()[0].ID == "mutated" {
		t.Fatalf("catalog mutated via returned slice")
	}
}
