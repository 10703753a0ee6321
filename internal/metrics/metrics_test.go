package metrics

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	dto "github.com/prometheus/client_model/go"
)

func gather(t *testing.T, r *Recorder) map[string]*dto.MetricFamily {
	t.Helper()
	families, err := r.Registry().Gather()
	if err != nil {
		t.Fatalf("Gather() error = %v", err)
	}
	out := make(map[string]*dto.MetricFamily, len(families))
	for _, mf := range families {
		out[mf.GetName()] = mf
	}
	return out
}

func TestRecorder(t *testing.T) {
	r, err := New()
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	r.FileConverted(10, 2, 20*time.Millisecond)
	r.FileConverted(5, 0, 10*time.Millisecond)
	r.FileFailed(time.Millisecond)

	families := gather(t, r)

	files := families["licor_files_converted_total"]
	if files == nil {
		t.Fatal("licor_files_converted_total not registered")
	}
	byStatus := map[string]float64{}
	for _, m := range files.GetMetric() {
		for _, l := range m.GetLabel() {
			if l.GetName() == "status" {
				byStatus[l.GetValue()] = m.GetCounter().GetValue()
			}
		}
	}
	if byStatus[StatusOK] != 2 || byStatus[StatusFailed] != 1 {
		t.Errorf("files by status = %v, want ok=2 failed=1", byStatus)
	}

	if got := families["licor_rows_converted_total"].GetMetric()[0].GetCounter().GetValue(); got != 15 {
		t.Errorf("rows = %v, want 15", got)
	}
	if got := families["licor_columns_fallback_total"].GetMetric()[0].GetCounter().GetValue(); got != 2 {
		t.Errorf("fallback columns = %v, want 2", got)
	}
	if got := families["licor_conversion_duration_seconds"].GetMetric()[0].GetHistogram().GetSampleCount(); got != 3 {
		t.Errorf("duration samples = %d, want 3", got)
	}
}

func TestRecorder_Nil(t *testing.T) {
	var r *Recorder
	r.FileConverted(1, 1, time.Second)
	r.FileFailed(time.Second)
	if err := r.WriteTextfile(filepath.Join(t.TempDir(), "x.prom")); err != nil {
		t.Errorf("WriteTextfile() on nil recorder error = %v", err)
	}
	if r.Registry() != nil {
		t.Error("Registry() on nil recorder should be nil")
	}
}

func TestWriteTextfile(t *testing.T) {
	r, err := New()
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	r.FileConverted(3, 1, time.Millisecond)

	path := filepath.Join(t.TempDir(), "licor.prom")
	if err := r.WriteTextfile(path); err != nil {
		t.Fatalf("WriteTextfile() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{
		`licor_files_converted_total{status="ok"} 1`,
		"licor_rows_converted_total 3",
		"licor_columns_fallback_total 1",
	} {
		if !strings.Contains(string(data), want) {
			t.Errorf("textfile missing %q:\n%s", want, data)
		}
	}
}
