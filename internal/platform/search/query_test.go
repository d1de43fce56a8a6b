package search

import (
	"strings"
	"testing"
)

func TestQueryBasic(t *testing.T) {
	q := NewQuery("invoice", "id, status")
	q.Add("patient_id = $1", "patient-123")
	q.OrderBy("created_at DESC")

	countSQL := q.CountSQL()
	if !strings.Contains(countSQL, "SELECT COUNT(*) FROM invoice WHERE 1=1 AND patient_id = $1") {
		t.Errorf("unexpected count SQL: %s", countSQL)
	}
	if len(q.CountArgs()) != 1 || q.CountArgs()[0] != "patient-123" {
		t.Errorf("unexpected count args: %v", q.CountArgs())
	}

	dataSQL := q.DataSQL(10, 0)
	if !strings.Contains(dataSQL, "ORDER BY created_at DESC") {
		t.Errorf("expected ORDER BY in data SQL: %s", dataSQL)
	}
	if !strings.Contains(dataSQL, "LIMIT $2 OFFSET $3") {
		t.Errorf("expected LIMIT/OFFSET in data SQL: %s", dataSQL)
	}

	dataArgs := q.DataArgs(10, 0)
	if len(dataArgs) != 3 || dataArgs[1] != 10 || dataArgs[2] != 0 {
		t.Errorf("unexpected data args: %v", dataArgs)
	}
}

func TestQueryApplyParams(t *testing.T) {
	configs := map[string]ParamConfig{
		"patient": {Type: ParamReference, Column: "patient_id"},
		"status":  {Type: ParamToken, Column: "status"},
		"date":    {Type: ParamDate, Column: "invoice_date"},
		"number":  {Type: ParamString, Column: "invoice_number"},
		"total":   {Type: ParamNumber, Column: "total_amount"},
	}

	t.Run("token param exact match", func(t *testing.T) {
		q := NewQuery("invoice", "id")
		q.ApplyParams(map[string]string{"status": "sent"}, configs)
		sql := q.CountSQL()
		if !strings.Contains(sql, "status = $1") {
			t.Errorf("expected exact match for token: %s", sql)
		}
	})

	t.Run("date param with prefix", func(t *testing.T) {
		q := NewQuery("invoice", "id")
		q.ApplyParams(map[string]string{"date": "gt2024-01-01"}, configs)
		sql := q.CountSQL()
		if !strings.Contains(sql, "invoice_date >") {
			t.Errorf("expected > for gt prefix: %s", sql)
		}
		if q.CountArgs()[0] != "2024-01-01" {
			t.Errorf("prefix should be stripped from value, got: %v", q.CountArgs()[0])
		}
	})

	t.Run("string param prefix match", func(t *testing.T) {
		q := NewQuery("invoice", "id")
		q.ApplyParams(map[string]string{"number": "INV-202402"}, configs)
		sql := q.CountSQL()
		if !strings.Contains(sql, "ILIKE") {
			t.Errorf("expected ILIKE for string search: %s", sql)
		}
		if q.CountArgs()[0] != "INV-202402%" {
			t.Errorf("expected prefix match pattern, got: %v", q.CountArgs()[0])
		}
	})

	t.Run("number param with prefix", func(t *testing.T) {
		q := NewQuery("invoice", "id")
		q.ApplyParams(map[string]string{"total": "ge10000"}, configs)
		sql := q.CountSQL()
		if !strings.Contains(sql, "total_amount >=") {
			t.Errorf("expected >= for ge prefix: %s", sql)
		}
	})

	t.Run("multiple params combined", func(t *testing.T) {
		q := NewQuery("invoice", "id")
		q.ApplyParams(map[string]string{
			"patient": "p1",
			"status":  "paid",
		}, configs)
		sql := q.CountSQL()
		if !strings.Contains(sql, "AND") {
			t.Errorf("expected AND clauses: %s", sql)
		}
		if len(q.CountArgs()) != 2 {
			t.Errorf("expected 2 args, got %d", len(q.CountArgs()))
		}
	})

	t.Run("unknown param ignored", func(t *testing.T) {
		q := NewQuery("invoice", "id")
		q.ApplyParams(map[string]string{"unknown-param": "foo"}, configs)
		if len(q.CountArgs()) != 0 {
			t.Errorf("expected 0 args for unknown param, got %d", len(q.CountArgs()))
		}
	})
}

func TestQueryApplySort(t *testing.T) {
	configs := map[string]ParamConfig{
		"date":  {Type: ParamDate, Column: "invoice_date"},
		"total": {Type: ParamNumber, Column: "total_amount"},
	}

	t.Run("empty falls back to default", func(t *testing.T) {
		q := NewQuery("invoice", "id")
		q.ApplySort("", "created_at DESC", configs)
		if !strings.Contains(q.DataSQL(10, 0), "ORDER BY created_at DESC") {
			t.Errorf("expected default order: %s", q.DataSQL(10, 0))
		}
	})

	t.Run("descending prefix", func(t *testing.T) {
		q := NewQuery("invoice", "id")
		q.ApplySort("-date,total", "created_at DESC", configs)
		sql := q.DataSQL(10, 0)
		if !strings.Contains(sql, "ORDER BY invoice_date DESC, total_amount ASC") {
			t.Errorf("unexpected order clause: %s", sql)
		}
	})

	t.Run("unknown field falls back to default", func(t *testing.T) {
		q := NewQuery("invoice", "id")
		q.ApplySort("bogus", "created_at DESC", configs)
		if !strings.Contains(q.DataSQL(10, 0), "ORDER BY created_at DESC") {
			t.Errorf("expected default order: %s", q.DataSQL(10, 0))
		}
	})
}
