package anvil

import (
	"strings"
	"testing"
)

func TestOperationRegistryConsistency(t *testing.T) {
	for name, op := range operations {
		if op.name != name {
			t.Errorf("%s: registry key and operation name disagree (%s)", name, op.name)
		}
		switch op.encoding {
		case encodeJSON, encodeBinary:
			if op.path == "" {
				t.Errorf("%s: REST operation without a path", name)
			}
			if op.document != "" {
				t.Errorf("%s: REST operation carries a GraphQL document", name)
			}
		case encodeGraphQL, encodeMultipart:
			if op.document == "" {
				t.Errorf("%s: GraphQL operation without a document", name)
			}
			if len(op.dataPath) == 0 {
				t.Errorf("%s: GraphQL operation without a data path", name)
			}
			if !strings.Contains(op.document, op.dataPath[len(op.dataPath)-1]) {
				t.Errorf("%s: document does not select %q", name, op.dataPath[len(op.dataPath)-1])
			}
		}
	}
}

func TestLookupOperationPanicsOnUnknown(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic for unknown operation")
		}
	}()
	lookupOperation("noSuchOperation")
}

func TestRequireArgs(t *testing.T) {
	op := operation{name: "cast", args: []string{"eid"}}

	if err := op.requireArgs(map[string]string{"eid": "abc"}); err != nil {
		t.Errorf("unexpected error: %v", err)
	}

	err := op.requireArgs(map[string]string{"eid": ""})
	if !IsValidationError(err) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if !strings.Contains(err.Error(), "eid") {
		t.Errorf("error should name the argument: %v", err)
	}
}
