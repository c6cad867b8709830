package bot

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/Spok95/clinic-stock/internal/session"
	"github.com/Spok95/clinic-stock/internal/vocab"
)

/*** HELPERS ***/

func (b *Bot) send(msg tgbotapi.Chattable) {
	if _, err := b.api.Send(msg); err != nil {
		b.log.Error("send failed", "err", err)
	}
}

func (b *Bot) reply(chatID int64, text string) {
	b.send(tgbotapi.NewMessage(chatID, text))
}

func (b *Bot) replyWith(chatID int64, text string, kb tgbotapi.InlineKeyboardMarkup) {
	m := tgbotapi.NewMessage(chatID, text)
	if len(kb.InlineKeyboard) > 0 {
		m.ReplyMarkup = kb
	}
	b.send(m)
}

func (b *Bot) answerCallback(cb *tgbotapi.CallbackQuery, text string, alert bool) error {
	resp := tgbotapi.NewCallback(cb.ID, text)
	resp.ShowAlert = alert
	_, err := b.api.Request(resp)
	return err
}

// dropFlow abandons an unfinished dispense; one already being submitted stays.
func (b *Bot) dropFlow(c *chat) {
	if err := c.flow.Cancel(); err != nil {
		b.log.Debug("dispense not cancelled", "chat_id", c.id, "err", err)
	}
}

// require checks the chat is logged in and, when action is set, allowed to do it.
func (b *Bot) require(c *chat, action vocab.Action) bool {
	if c.sess.State() != session.Authenticated {
		b.reply(c.id, "Сначала войдите: /login")
		return false
	}
	if action != "" && !c.sess.Can(action) {
		b.reply(c.id, "Недостаточно прав для этого раздела.")
		return false
	}
	return true
}

func (b *Bot) showMenu(c *chat, text string) {
	m := tgbotapi.NewMessage(c.id, text)
	if u := c.sess.User(); u != nil {
		m.ReplyMarkup = menuKeyboard(u.Role)
	}
	b.send(m)
}
