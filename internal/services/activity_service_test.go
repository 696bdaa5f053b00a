package services

import (
	"context"
	"strings"
	"testing"

	"caixa/internal/core"
	"caixa/internal/memory"
)

func TestRecordPrependsNewestFirst(t *testing.T) {
	store := memory.New()
	activity := NewActivityService(store, nil)
	ctx := context.Background()
	sess := adminSession()

	if err := activity.Record(ctx, sess, core.ActionCreate, core.EntityTransaction, "Created transaction \"Mercado\""); err != nil {
		t.Fatal(err)
	}
	if err := activity.Record(ctx, sess, core.ActionDelete, core.EntityTransaction, "Deleted transaction \"Mercado\""); err != nil {
		t.Fatal(err)
	}

	entries, err := activity.List(ctx, sess, ActivityFilter{})
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].Action != core.ActionDelete {
		t.Errorf("newest entry should come first, got %q", entries[0].Action)
	}
	if entries[1].Action != core.ActionCreate {
		t.Errorf("oldest entry should come last, got %q", entries[1].Action)
	}
}

// A mutation through the finance service lands in the audit trail with
// the acting user's identity on it.
func TestCreateTransactionIsAudited(t *testing.T) {
	_, finance, activity := testFixture(t)
	ctx := context.Background()
	admin := adminSession()

	if _, _, err := finance.CreateTransaction(ctx, admin, pendingInput("Aluguel", 180000)); err != nil {
		t.Fatal(err)
	}

	entries, err := activity.List(ctx, admin, ActivityFilter{})
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) == 0 {
		t.Fatal("expected an audit entry")
	}
	first := entries[0]
	if first.Action != core.ActionCreate {
		t.Errorf("expected create action, got %q", first.Action)
	}
	if first.UserName != "Admin Demo" {
		t.Errorf("expected actor Admin Demo, got %q", first.UserName)
	}
	if first.CompanyID != "1" {
		t.Errorf("expected company 1, got %q", first.CompanyID)
	}
	if !strings.Contains(first.Details, "Aluguel") {
		t.Errorf("details should name the transaction, got %q", first.Details)
	}
}

func TestActivityScoping(t *testing.T) {
	store := memory.New()
	activity := NewActivityService(store, nil)
	ctx := context.Background()

	other := adminSession()
	other.CompanyID = "2"
	if err := activity.Record(ctx, adminSession(), core.ActionCreate, core.EntityCategory, "Created category \"Lazer\""); err != nil {
		t.Fatal(err)
	}
	if err := activity.Record(ctx, other, core.ActionCreate, core.EntityCategory, "Created category \"Viagem\""); err != nil {
		t.Fatal(err)
	}

	own, err := activity.List(ctx, adminSession(), ActivityFilter{})
	if err != nil {
		t.Fatal(err)
	}
	if len(own) != 1 || own[0].CompanyID != "1" {
		t.Errorf("admin should only see their own company's trail, got %v", own)
	}

	all, err := activity.List(ctx, masterSession(), ActivityFilter{})
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 2 {
		t.Errorf("master should see every entry, got %d", len(all))
	}
}

func TestActivityFilter(t *testing.T) {
	store := memory.New()
	activity := NewActivityService(store, nil)
	ctx := context.Background()
	sess := adminSession()

	if err := activity.Record(ctx, sess, core.ActionCreate, core.EntityTransaction, "Created transaction \"Mercado\""); err != nil {
		t.Fatal(err)
	}
	if err := activity.Record(ctx, sess, core.ActionUpdate, core.EntityCategory, "Updated category \"Lazer\""); err != nil {
		t.Fatal(err)
	}

	byAction, err := activity.List(ctx, sess, ActivityFilter{Action: core.ActionUpdate})
	if err != nil {
		t.Fatal(err)
	}
	if len(byAction) != 1 || byAction[0].Entity != core.EntityCategory {
		t.Errorf("action filter failed: %v", byAction)
	}

	byEntity, err := activity.List(ctx, sess, ActivityFilter{Entity: core.EntityTransaction})
	if err != nil {
		t.Fatal(err)
	}
	if len(byEntity) != 1 {
		t.Errorf("entity filter failed: %v", byEntity)
	}

	bySearch, err := activity.List(ctx, sess, ActivityFilter{Search: "mercado"})
	if err != nil {
		t.Fatal(err)
	}
	if len(bySearch) != 1 {
		t.Errorf("case-insensitive search failed: %v", bySearch)
	}
}

func TestExportCSV(t *testing.T) {
	store := memory.New()
	activity := NewActivityService(store, nil)
	ctx := context.Background()
	sess := adminSession()

	if err := activity.Record(ctx, sess, core.ActionCreate, core.EntityTransaction, `Created transaction "Mercado"`); err != nil {
		t.Fatal(err)
	}

	filename, data, err := activity.ExportCSV(ctx, sess)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(filename, "activity_logs_") || !strings.HasSuffix(filename, ".csv") {
		t.Errorf("unexpected filename %q", filename)
	}

	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	if lines[0] != "Timestamp,User,Action,Entity,Details,CompanyID" {
		t.Errorf("unexpected header %q", lines[0])
	}
	if len(lines) != 2 {
		t.Fatalf("expected header plus 1 row, got %d lines", len(lines))
	}

	row := lines[1]
	for _, field := range []string{`"Admin Demo"`, `"create"`, `"transaction"`, `"1"`} {
		if !strings.Contains(row, field) {
			t.Errorf("row should contain quoted field %s, got %q", field, row)
		}
	}
	// Embedded quotes are doubled, CSV style.
	if !strings.Contains(row, `"Created transaction ""Mercado"""`) {
		t.Errorf("embedded quotes should be doubled, got %q", row)
	}

	// The export itself lands in the trail.
	entries, err := activity.List(ctx, sess, ActivityFilter{Action: core.ActionExport})
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected 1 export entry, got %d", len(entries))
	}
	if !strings.Contains(entries[0].Details, "1 activity log entries") {
		t.Errorf("export entry should count the exported rows, got %q", entries[0].Details)
	}
}

func TestExportCSVOnlyOwnCompany(t *testing.T) {
	store := memory.New()
	activity := NewActivityService(store, nil)
	ctx := context.Background()

	other := adminSession()
	other.CompanyID = "2"
	if err := activity.Record(ctx, other, core.ActionCreate, core.EntityCategory, "Created category \"Viagem\""); err != nil {
		t.Fatal(err)
	}

	_, data, err := activity.ExportCSV(ctx, adminSession())
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(data), "Viagem") {
		t.Error("export must not contain another company's entries")
	}
}
