// Traces: FR-210
package mcpusage

import (
	"encoding/json"
	"reflect"
	"testing"
)

const testMarker = "mcp-client-2025-04-04"

func TestIsQualifyingTool(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		want bool
	}{
		{"mcp__github__create_issue", true},
		{"mcp__fs__read_file", true},
		{"mcp__", true},
		{"echo", false},
		{"current_time", false},
		{"MCP__github__create_issue", false},
		{"mcp_github", false},
		{"", false},
	}

	for _, tc := range cases {
		if got := IsQualifyingTool(tc.name); got != tc.want {
			t.Errorf("IsQualifyingTool(%q) = %v; want %v", tc.name, got, tc.want)
		}
	}
}

func TestTracker_MarkUsed_Idempotent(t *testing.T) {
	t.Parallel()

	tr := NewTracker(testMarker)
	if tr.Used() {
		t.Fatal("new tracker should start unused")
	}

	for i := 0; i < 4; i++ {
		tr.MarkUsed()
		if !tr.Used() {
			t.Fatalf("Used() = false after MarkUsed call %d", i+1)
		}
	}
}

func TestTracker_MarkerValue(t *testing.T) {
	t.Parallel()

	tr := NewTracker(testMarker)

	if v, ok := tr.MarkerValue(); ok || v != "" {
		t.Fatalf("MarkerValue() before MarkUsed = (%q, %v); want (\"\", false)", v, ok)
	}

	tr.MarkUsed()
	if v, ok := tr.MarkerValue(); !ok || v != testMarker {
		t.Fatalf("MarkerValue() after MarkUsed = (%q, %v); want (%q, true)", v, ok, testMarker)
	}
}

func TestTracker_AppendMarker_Unset_ReturnsInputUnchanged(t *testing.T) {
	t.Parallel()

	tr := NewTracker(testMarker)
	in := []string{"existing-beta"}

	got := tr.AppendMarker(in)
	if !reflect.DeepEqual(got, []string{"existing-beta"}) {
		t.Fatalf("AppendMarker = %v; want input unchanged", got)
	}
}

func TestTracker_AppendMarker_AppendsOnce(t *testing.T) {
	t.Parallel()

	tr := NewTracker(testMarker)
	tr.MarkUsed()

	got := tr.AppendMarker([]string{})
	if !reflect.DeepEqual(got, []string{testMarker}) {
		t.Fatalf("AppendMarker([]) = %v; want [%q]", got, testMarker)
	}

	// Idempotent under repeated application.
	again := tr.AppendMarker(got)
	if !reflect.DeepEqual(again, got) {
		t.Fatalf("second AppendMarker = %v; want %v", again, got)
	}
}

func TestTracker_AppendMarker_PreservesOrder(t *testing.T) {
	t.Parallel()

	tr := NewTracker(testMarker)
	tr.MarkUsed()

	got := tr.AppendMarker([]string{"beta-a", "beta-b"})
	want := []string{"beta-a", "beta-b", testMarker}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("AppendMarker = %v; want %v", got, want)
	}
}

func TestTracker_AppendMarker_DuplicateSuppression(t *testing.T) {
	t.Parallel()

	tr := NewTracker(testMarker)
	tr.MarkUsed()

	in := []string{"beta-a", testMarker}
	got := tr.AppendMarker(in)
	if !reflect.DeepEqual(got, in) {
		t.Fatalf("AppendMarker with marker present = %v; want %v", got, in)
	}
}

func TestTracker_OnToolExecuted_FiltersByPrefix(t *testing.T) {
	t.Parallel()

	tr := NewTracker(testMarker)

	tr.OnToolExecuted("echo")
	if tr.Used() {
		t.Fatal("non-qualifying tool should not set the flag")
	}

	// Multiple qualifying calls still yield a single marker occurrence.
	for _, name := range []string{"mcp__gh__a", "mcp__gh__b", "mcp__fs__c", "mcp__fs__d"} {
		tr.OnToolExecuted(name)
	}
	got := tr.AppendMarker([]string{})
	if len(got) != 1 {
		t.Fatalf("AppendMarker([]) after 4 qualifying calls = %v; want one element", got)
	}
}

func TestTracker_SnapshotRestore_RoundTrip(t *testing.T) {
	t.Parallel()

	tr := NewTracker(testMarker)
	tr.MarkUsed()

	snap := tr.Snapshot()

	fresh := NewTracker(testMarker)
	fresh.Restore(snap)
	if !fresh.Used() {
		t.Fatal("restored tracker should report used")
	}
}

func TestTracker_Restore_NeverClears(t *testing.T) {
	t.Parallel()

	tr := NewTracker(testMarker)
	tr.MarkUsed()

	tr.Restore(State{Used: false})
	if !tr.Used() {
		t.Fatal("Restore(used=false) must not clear an already-set flag")
	}
}

func TestTracker_ResumeScenario(t *testing.T) {
	t.Parallel()

	// Mark used, export, reset, import: flag survives the boundary.
	tr := NewTracker(testMarker)
	tr.MarkUsed()
	snap := tr.Snapshot()
	tr.Reset()
	if tr.Used() {
		t.Fatal("Reset should clear the flag")
	}
	tr.Restore(snap)
	if !tr.Used() {
		t.Fatal("flag should be restored from snapshot")
	}
	if got := tr.AppendMarker([]string{}); len(got) != 1 {
		t.Fatalf("AppendMarker([]) = %v; want one element", got)
	}
}

func TestTracker_ContinueWithoutUseScenario(t *testing.T) {
	t.Parallel()

	tr := NewTracker(testMarker)
	snap := tr.Snapshot()
	tr.Reset()
	tr.Restore(snap)

	got := tr.AppendMarker([]string{"existing-beta"})
	if !reflect.DeepEqual(got, []string{"existing-beta"}) {
		t.Fatalf("AppendMarker while unused = %v; want input unchanged", got)
	}

	tr.MarkUsed()
	got = tr.AppendMarker([]string{"existing-beta"})
	if len(got) != 2 {
		t.Fatalf("AppendMarker after MarkUsed = %v; want two elements", got)
	}
}

func TestDecodeState(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		raw  string
		want bool
	}{
		{"used true", `{"used":true}`, true},
		{"used false", `{"used":false}`, false},
		{"missing field", `{}`, false},
		{"wrong type", `{"used":"yes"}`, false},
		{"not an object", `[1,2]`, false},
		{"garbage", `{{{`, false},
		{"empty", ``, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := DecodeState(json.RawMessage(tc.raw))
			if got.Used != tc.want {
				t.Fatalf("DecodeState(%q).Used = %v; want %v", tc.raw, got.Used, tc.want)
			}
		})
	}
}

func TestState_JSONShape(t *testing.T) {
	t.Parallel()

	raw, err := json.Marshal(State{Used: true})
	if err != nil {
		t.Fatalf("marshal state: %v", err)
	}
	if string(raw) != `{"used":true}` {
		t.Fatalf("state JSON = %s; want {\"used\":true}", raw)
	}
}
