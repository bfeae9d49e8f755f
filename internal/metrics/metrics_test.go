package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetricsRecord(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.Operation("add_to_cart", nil)
	m.Operation("add_to_cart", nil)
	m.Operation("login", errors.New("bad password"))
	m.PersistWrite(nil)
	m.CatalogFetch(20 * time.Millisecond)
	m.HTTPRequest("GET", "/products", "200")

	if got := testutil.ToFloat64(m.operations.WithLabelValues("add_to_cart", ResultOK)); got != 2 {
		t.Errorf("add_to_cart ok = %v", got)
	}
	if got := testutil.ToFloat64(m.operations.WithLabelValues("login", ResultError)); got != 1 {
		t.Errorf("login error = %v", got)
	}
	if got := testutil.ToFloat64(m.persistWrites.WithLabelValues(ResultOK)); got != 1 {
		t.Errorf("persist ok = %v", got)
	}
	if got := testutil.CollectAndCount(m.fetchDuration); got != 1 {
		t.Errorf("fetch histogram series = %d", got)
	}
	if got := testutil.ToFloat64(m.httpRequests.WithLabelValues("GET", "/products", "200")); got != 1 {
		t.Errorf("http requests = %v", got)
	}
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	m.Operation("x", nil)
	m.CatalogFetch(time.Second)
	m.PersistWrite(errors.New("x"))
	m.HTTPRequest("GET", "/", "200")
}
