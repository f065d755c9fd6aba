package executors

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/yurifrl/cardcsv/pkg/config"
	"github.com/yurifrl/cardcsv/pkg/parser"
	"github.com/yurifrl/cardcsv/pkg/plan"
)

const sampleCards = `[
  {"name": "Llanowar Elves", "cmc": 1, "colors": ["Green"], "subtypes": ["Elf", "Druid"], "power": "1", "toughness": "1", "text": "{T}: Add {G}."},
  {"name": "Giant Spider", "cmc": 4, "colors": ["Green"], "subtypes": ["Spider"], "power": "2", "toughness": "4", "text": "Reach (This creature can block creatures with flying.)"}
]`

func setupPlan(t *testing.T, outputs ...string) *plan.Plan {
	t.Helper()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "cards.json"), []byte(sampleCards), 0644); err != nil {
		t.Fatalf("Failed to create cards file: %v", err)
	}

	var b strings.Builder
	b.WriteString("defaults:\n  clean_reminder_text: true\njobs:\n")
	for _, out := range outputs {
		b.WriteString("  - input: cards.json\n    output: " + out + "\n")
	}
	path := filepath.Join(dir, "plan.yaml")
	if err := os.WriteFile(path, []byte(b.String()), 0644); err != nil {
		t.Fatalf("Failed to create plan file: %v", err)
	}

	p, err := plan.Load(path)
	if err != nil {
		t.Fatalf("plan.Load failed: %v", err)
	}
	return p
}

func TestPlan(t *testing.T) {
	p := setupPlan(t, "out/cards.csv")
	exec := New(log.New(&bytes.Buffer{}), config.Default())

	var out bytes.Buffer
	changes, err := exec.Plan(context.Background(), p, &out)
	if err != nil {
		t.Fatalf("Plan failed: %v", err)
	}
	if len(changes) != 1 || changes[0].Records != 2 || changes[0].Profile != "default" {
		t.Errorf("unexpected changes %+v", changes)
	}
	if !strings.Contains(out.String(), "1 file(s) will be written") {
		t.Errorf("unexpected preview %q", out.String())
	}
	if _, err := os.Stat(p.Resolve("out/cards.csv")); !os.IsNotExist(err) {
		t.Errorf("Plan must not write outputs")
	}
}

func TestPlanReportsMissingInput(t *testing.T) {
	p := setupPlan(t, "out.csv")
	p.Jobs[0].Input = "missing.json"
	exec := New(log.New(&bytes.Buffer{}), config.Default())

	changes, err := exec.Plan(context.Background(), p, &bytes.Buffer{})
	if err == nil {
		t.Fatal("expected error for missing input")
	}
	if changes[0].Err == nil {
		t.Errorf("expected change to carry the error")
	}
}

func TestApply(t *testing.T) {
	p := setupPlan(t, "out/cards.csv", "out/cards.csv.gz", "out/cards.csv.xz", "out/cards.csv.bz2")
	exec := New(log.New(&bytes.Buffer{}), config.Default())

	results, err := exec.Apply(context.Background(), p)
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	if len(results) != 4 {
		t.Fatalf("expected 4 results, got %d", len(results))
	}

	want := `name,cmc,colors,subtypes,power,toughness,text
"llanowar elves",1,"green","elf druid",1,1,"{t}: add {g}."
"giant spider",4,"green","spider",2,4,"reach "
`
	for _, out := range []string{"out/cards.csv", "out/cards.csv.gz", "out/cards.csv.xz", "out/cards.csv.bz2"} {
		data, err := parser.ReadAll(context.Background(), p.Resolve(out))
		if err != nil {
			t.Errorf("failed to read %s: %v", out, err)
			continue
		}
		if string(data) != want {
			t.Errorf("%s mismatch:\nExpected:\n%s\nGot:\n%s", out, want, data)
		}
	}
}
