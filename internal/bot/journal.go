package bot

import (
	"context"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/Spok95/clinic-stock/internal/report"
	"github.com/Spok95/clinic-stock/internal/vocab"
)

// journalPreview is how many entries fit in one chat message.
const journalPreview = 20

func (b *Bot) showJournal(ctx context.Context, c *chat) {
	shown, err := c.sess.Client().NarcoticLogsPage(ctx, 0, journalPreview)
	if err != nil {
		b.fail(ctx, c, err)
		return
	}
	kb := tgbotapi.NewInlineKeyboardMarkup(tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("📥 Выгрузить в Excel", "jr:export"),
	))
	b.replyWith(c.id, journalText(shown, b.loc), kb)
}

func (b *Bot) onJournalCallback(ctx context.Context, c *chat, args []string) {
	if len(args) == 0 {
		return
	}
	var (
		raw    []byte
		prefix string
		err    error
	)
	switch args[0] {
	case "export":
		if !b.require(c, vocab.ActionViewNarcoticJournal) {
			return
		}
		logs, lerr := c.sess.Client().AllNarcoticLogs(ctx)
		if lerr != nil {
			b.fail(ctx, c, lerr)
			return
		}
		raw, err = report.NarcoticJournal(logs, b.loc)
		prefix = "narcotic_journal"
	case "stock":
		if !b.require(c, vocab.ActionViewReports) {
			return
		}
		ms, lerr := c.catalog().All(ctx)
		if lerr != nil {
			b.fail(ctx, c, lerr)
			return
		}
		raw, err = report.Stock(ms)
		prefix = "stock"
	default:
		return
	}
	if err != nil {
		b.log.Error("build report", "report", prefix, "err", err)
		b.reply(c.id, "Не удалось сформировать файл.")
		return
	}
	doc := tgbotapi.NewDocument(c.id, tgbotapi.FileBytes{
		Name:  report.FileName(prefix, time.Now().In(b.loc)),
		Bytes: raw,
	})
	b.send(doc)
}
