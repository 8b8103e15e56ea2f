// Package digest pushes a daily agenda summary to a Telegram chat. It is an
// optional delivery layer on top of the engine: the agency's back office
// receives the same buckets the dashboard shows, once a day.
package digest

import (
	"context"
	"fmt"
	"html"
	"log"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"crm-agenda/internal/model"
	"crm-agenda/internal/service"
)

// AgendaSource supplies the classified buckets; *service.FeedService
// satisfies it.
type AgendaSource interface {
	Agenda(ctx context.Context) (service.Agenda, error)
}

// Sender formats and delivers the daily digest.
type Sender struct {
	api    *tgbotapi.BotAPI
	chatID int64
	source AgendaSource
	now    func() time.Time
}

func New(token string, chatID int64, source AgendaSource, now func() time.Time) (*Sender, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("create bot api: %w", err)
	}
	if now == nil {
		now = time.Now
	}

	log.Printf("[info] digest bot authorized on account %s", api.Self.UserName)

	return &Sender{api: api, chatID: chatID, source: source, now: now}, nil
}

// SendDaily builds today's summary and posts it to the configured chat.
func (s *Sender) SendDaily(ctx context.Context) error {
	agenda, err := s.source.Agenda(ctx)
	if err != nil {
		return fmt.Errorf("digest: %w", err)
	}

	msg := tgbotapi.NewMessage(s.chatID, BuildSummary(agenda, s.now()))
	msg.ParseMode = tgbotapi.ModeHTML
	if _, err := s.api.Send(msg); err != nil {
		return fmt.Errorf("send digest: %w", err)
	}
	return nil
}

// BuildSummary renders the display-trimmed buckets as a Telegram HTML
// message.
func BuildSummary(agenda service.Agenda, now time.Time) string {
	view := agenda.Display()

	var b strings.Builder
	b.WriteString("📋 <b>Agenda do dia</b>\n")
	b.WriteString(fmt.Sprintf("🗓 %s\n\n", now.Format("02/01/2006")))

	b.WriteString(fmt.Sprintf(
		"Pendentes: %d · Atrasadas: %d · Compromissos hoje: %d · Alta prioridade: %d\n",
		agenda.Stats.PendingTasks,
		agenda.Stats.OverdueTasks,
		agenda.Stats.AppointmentsToday,
		agenda.Stats.HighPriorityOpen,
	))

	b.WriteString("\n⚠️ <b>Atrasadas</b>\n")
	if len(view.Overdue) == 0 {
		b.WriteString("— nenhuma tarefa atrasada\n")
	} else {
		for _, item := range view.Overdue {
			b.WriteString(formatItem(item))
		}
	}

	b.WriteString("\n⏳ <b>Próximos 7 dias</b>\n")
	if len(view.Upcoming) == 0 {
		b.WriteString("— nada agendado\n")
	} else {
		for _, item := range view.Upcoming {
			b.WriteString(formatItem(item))
		}
	}

	return strings.TrimSpace(b.String())
}

func formatItem(item service.ItemRef) string {
	icon := "📝"
	if item.Type == model.ItemAppointment {
		icon = "📅"
	}
	title := html.EscapeString(strings.TrimSpace(item.Title()))
	if item.Clock != "" {
		return fmt.Sprintf("%s %s — %s %s\n", icon, title, item.Date, item.Clock)
	}
	return fmt.Sprintf("%s %s — %s\n", icon, title, item.Date)
}
