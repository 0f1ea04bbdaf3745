package agent

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/zen-systems/cortexgate/pkg/backend"
)

func schedulingFixture() (*SchedulingAgent, *backend.MemoryTasks, *backend.MemoryMail) {
	tasks := &backend.MemoryTasks{
		Collections: []backend.Collection{{ID: "col-1", Title: "Agenda"}},
		Items:       map[string][]backend.Item{},
	}
	mail := &backend.MemoryMail{}
	return NewScheduling(tasks, mail, []string{"andrea@elevat.io"}), tasks, mail
}

func TestSchedulingSyncDedupIsCaseInsensitive(t *testing.T) {
	a, tasks, mail := schedulingFixture()
	tasks.Items["col-1"] = []backend.Item{{ID: "i-1", Title: "Vernal Kickoff"}}
	mail.Messages = []backend.Message{{Subject: "vernal kickoff", From: "andrea@elevat.io"}}

	result, err := a.Sync(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Created) != 0 {
		t.Fatalf("case-only difference must be a duplicate, created %v", result.Created)
	}
	if len(result.Skipped) != 1 || result.Skipped[0] != "vernal kickoff" {
		t.Fatalf("expected skipped duplicate, got %v", result.Skipped)
	}
	if len(tasks.Items["col-1"]) != 1 {
		t.Fatalf("duplicate created an item: %v", tasks.Items["col-1"])
	}
}

func TestSchedulingSyncCreatesNewItems(t *testing.T) {
	a, tasks, mail := schedulingFixture()
	mail.Messages = []backend.Message{
		{Subject: "Propuesta Vernal", From: "andrea@elevat.io", Snippet: "adjunto la propuesta"},
		{Subject: "Factura marzo", From: "andrea@elevat.io"},
	}

	result, err := a.Sync(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Created) != 2 {
		t.Fatalf("expected 2 created, got %v", result.Created)
	}
	if len(tasks.Items["col-1"]) != 2 {
		t.Fatalf("expected 2 items, got %d", len(tasks.Items["col-1"]))
	}
	if len(mail.Filters) != 1 || !strings.Contains(mail.Filters[0], "newer_than:2d") {
		t.Fatalf("expected 2-day window filter, got %v", mail.Filters)
	}
}

func TestSchedulingSyncTriggeredByMailKeywordAndSender(t *testing.T) {
	a, _, mail := schedulingFixture()

	got, err := a.Execute(context.Background(), "revisa el correo de andrea", nil, nil)
	if err != nil {
		t.Fatalf("scheduling must never raise: %v", err)
	}
	if len(mail.Filters) != 1 {
		t.Fatalf("expected one mail search, got %d", len(mail.Filters))
	}
	if !strings.Contains(got, "No encontré correos nuevos") {
		t.Fatalf("expected empty sync report, got %q", got)
	}
}

func TestSchedulingMailKeywordWithoutSenderIsNotSync(t *testing.T) {
	a, _, mail := schedulingFixture()

	if _, err := a.Execute(context.Background(), "revisa el correo", nil, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(mail.Filters) != 0 {
		t.Fatalf("sync must require a watched sender mention, got %v", mail.Filters)
	}
}

func TestSchedulingCreateStripsTriggerWords(t *testing.T) {
	a, tasks, _ := schedulingFixture()

	got, err := a.Execute(context.Background(), "agendar reunión con Vernal el lunes", nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(got, "Registrado") {
		t.Fatalf("expected creation confirmation, got %q", got)
	}
	items := tasks.Items["col-1"]
	if len(items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(items))
	}
	if strings.Contains(strings.ToLower(items[0].Title), "agendar") {
		t.Fatalf("trigger word not stripped: %q", items[0].Title)
	}
}

func TestSchedulingReadSummarizes(t *testing.T) {
	a, _, _ := schedulingFixture()

	got, err := a.Execute(context.Background(), "muéstrame la agenda", nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(got, "Resumen de seguimiento") {
		t.Fatalf("expected summary, got %q", got)
	}
}

func TestSchedulingHelpFallthrough(t *testing.T) {
	a, _, _ := schedulingFixture()

	got, err := a.Execute(context.Background(), "hola", nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != schedulingHelp {
		t.Fatalf("expected help string, got %q", got)
	}
}

func TestSchedulingBackendFailureBecomesString(t *testing.T) {
	tasks := &backend.MemoryTasks{Err: errors.New("notion down")}
	a := NewScheduling(tasks, &backend.MemoryMail{}, nil)

	got, err := a.Execute(context.Background(), "muéstrame la agenda", nil, nil)
	if err != nil {
		t.Fatalf("scheduling must never raise: %v", err)
	}
	if !strings.Contains(got, "Tuve un problema") {
		t.Fatalf("expected error string, got %q", got)
	}
}
