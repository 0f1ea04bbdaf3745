package agent

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/zen-systems/cortexgate/pkg/backend"
	"github.com/zen-systems/cortexgate/pkg/provider"
)

const schedulingHelp = "📅 Puedo revisar tu agenda, registrar reuniones o sincronizar correos con el seguimiento. Dime qué necesitas."

var (
	mailKeywords = []string{"correo", "mail", "email"}

	createKeywords = []string{"agendar", "agenda una", "nueva reunión", "crea", "programe", "cita", "nota", "tarea"}
	readKeywords   = []string{"qué tengo", "revisa", "busca", "muéstrame", "muestra", "agenda", "calendario"}

	scheduleStripWords = []string{"agendar", "agenda una", "nueva reunión", "programe", "crea", "cita para", "cita"}
)

// SyncResult reports one mail-to-tasks synchronization pass.
type SyncResult struct {
	Created []string
	Skipped []string
}

// SchedulingAgent manages tracked items and the mail-to-task sync. It
// never returns an error: every backend failure becomes a user-facing
// string, since fallback to a chat model cannot reach the calendar.
type SchedulingAgent struct {
	tasks   backend.TaskBackend
	mail    backend.MailBackend
	senders []string
}

// NewScheduling creates the scheduling agent. senders are the mail
// addresses watched by the sync sub-intent.
func NewScheduling(tasks backend.TaskBackend, mail backend.MailBackend, senders []string) *SchedulingAgent {
	return &SchedulingAgent{tasks: tasks, mail: mail, senders: senders}
}

func (a *SchedulingAgent) Name() string { return Scheduling }

// Execute classifies the query into sync / create / read sub-intents.
// Sync is checked first: it is the most specific trigger (mail keyword
// plus a watched sender) and its queries usually contain read words.
func (a *SchedulingAgent) Execute(ctx context.Context, query string, reqctx *Context, _ []provider.Attachment) (string, error) {
	lower := strings.ToLower(query)

	if containsAny(lower, mailKeywords) && a.mentionsSender(lower) {
		return a.SyncReport(ctx), nil
	}
	if containsAny(lower, createKeywords) {
		return a.create(ctx, query), nil
	}
	if containsAny(lower, readKeywords) {
		return a.read(ctx), nil
	}
	return schedulingHelp, nil
}

func (a *SchedulingAgent) mentionsSender(lower string) bool {
	for _, s := range a.senders {
		name := strings.ToLower(s)
		if at := strings.IndexByte(name, '@'); at > 0 {
			name = name[:at]
		}
		if name != "" && strings.Contains(lower, name) {
			return true
		}
	}
	return false
}

func (a *SchedulingAgent) read(ctx context.Context) string {
	summary, err := a.tasks.Summarize(ctx)
	if err != nil {
		return fmt.Sprintf("Tuve un problema al acceder al seguimiento: %v", err)
	}
	return summary
}

func (a *SchedulingAgent) create(ctx context.Context, query string) string {
	collections, err := a.tasks.ListCollections(ctx)
	if err != nil {
		return fmt.Sprintf("Tuve un problema al acceder al seguimiento: %v", err)
	}
	if len(collections) == 0 {
		return "No encontré colecciones donde registrar la cita."
	}

	title := extractTitle(query, scheduleStripWords)
	if title == "" {
		title = "Reunión"
	}
	if _, err := a.tasks.CreateItem(ctx, collections[0].ID, "📅 "+title, ""); err != nil {
		return fmt.Sprintf("No pude registrar la cita: %v", err)
	}
	log.Info().Str("title", title).Msg("scheduling: item created")
	return fmt.Sprintf("📅 **Registrado:** %s", title)
}

// SyncReport runs Sync and renders its outcome as a user-facing
// summary. Also exposed to the conversation agent as a tool.
func (a *SchedulingAgent) SyncReport(ctx context.Context) string {
	result, err := a.Sync(ctx)
	if err != nil {
		return fmt.Sprintf("No pude sincronizar los correos: %v", err)
	}
	if len(result.Created) == 0 && len(result.Skipped) == 0 {
		return "No encontré correos nuevos de los remitentes vigilados en las últimas 48h."
	}
	return fmt.Sprintf("Resumen Sync: Creadas=%d %v, Ignoradas(Duplicadas)=%d %v",
		len(result.Created), result.Created, len(result.Skipped), result.Skipped)
}

// Sync searches the watched senders' mail within a 2-day window and
// creates one tracked item per message whose subject is not already
// tracked. Dedup is case-insensitive substring in either direction,
// deliberately naive.
func (a *SchedulingAgent) Sync(ctx context.Context) (*SyncResult, error) {
	if len(a.senders) == 0 {
		return &SyncResult{}, nil
	}

	filter := fmt.Sprintf("from:(%s) newer_than:2d", strings.Join(a.senders, " OR "))
	messages, err := a.mail.SearchMessages(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("mail search: %w", err)
	}
	if len(messages) == 0 {
		return &SyncResult{}, nil
	}

	collections, err := a.tasks.ListCollections(ctx)
	if err != nil {
		return nil, fmt.Errorf("list collections: %w", err)
	}
	if len(collections) == 0 {
		return nil, fmt.Errorf("no collection available for synced items")
	}

	items, err := a.tasks.ListItems(ctx, collections[0].ID)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	tracked := make([]string, 0, len(items))
	for _, item := range items {
		tracked = append(tracked, strings.ToLower(item.Title))
	}

	result := &SyncResult{}
	for _, msg := range messages {
		subject := strings.TrimSpace(msg.Subject)
		if subject == "" {
			continue
		}
		if isTracked(tracked, strings.ToLower(subject)) {
			result.Skipped = append(result.Skipped, subject)
			continue
		}
		body := msg.Snippet
		if msg.From != "" {
			body = "De: " + msg.From + "\n" + body
		}
		if _, err := a.tasks.CreateItem(ctx, collections[0].ID, "📧 "+subject, body); err != nil {
			log.Warn().Err(err).Str("subject", subject).Msg("scheduling: sync create failed")
			continue
		}
		result.Created = append(result.Created, subject)
		tracked = append(tracked, strings.ToLower(subject))
	}

	log.Info().Int("created", len(result.Created)).Int("skipped", len(result.Skipped)).Msg("scheduling: sync done")
	return result, nil
}

func isTracked(tracked []string, lowerSubject string) bool {
	for _, t := range tracked {
		if t == "" {
			continue
		}
		if strings.Contains(t, lowerSubject) || strings.Contains(lowerSubject, t) {
			return true
		}
	}
	return false
}
