package bot

import (
	"context"
	"errors"
	"net/http"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/Spok95/clinic-stock/internal/apperr"
	"github.com/Spok95/clinic-stock/internal/dialog"
	"github.com/Spok95/clinic-stock/internal/session"
	"github.com/Spok95/clinic-stock/internal/vocab"
)

func (b *Bot) askEmail(ctx context.Context, c *chat) {
	if c.sess.State() == session.Authenticated {
		b.showMenu(c, "Вы уже вошли как "+c.sess.User().DisplayName()+". Для смены учётной записи: /logout")
		return
	}
	b.setState(ctx, c, dialog.StateLoginEmail, nil)
	m := tgbotapi.NewMessage(c.id, "Введите e-mail учётной записи клиники:")
	m.ReplyMarkup = tgbotapi.NewRemoveKeyboard(true)
	b.send(m)
}

func (b *Bot) onEmail(ctx context.Context, c *chat, text string) {
	if text == "" {
		b.reply(c.id, "Введите e-mail.")
		return
	}
	b.setState(ctx, c, dialog.StateLoginPassword, dialog.Payload{dialog.KeyEmail: text})
	b.reply(c.id, "Введите пароль (сообщение будет удалено):")
}

func (b *Bot) onPassword(ctx context.Context, c *chat, st *dialog.Item, msg *tgbotapi.Message) {
	// пароль не должен оставаться в истории чата
	if _, err := b.api.Request(tgbotapi.NewDeleteMessage(c.id, msg.MessageID)); err != nil {
		b.log.Debug("delete password message", "err", err)
	}
	email, _ := dialog.GetString(st.Payload, dialog.KeyEmail)

	if err := c.sess.Login(ctx, email, msg.Text); err != nil {
		var sr *apperr.ServerRejection
		if errors.As(err, &sr) && sr.Status == http.StatusUnauthorized {
			b.reply(c.id, "Неверный e-mail или пароль.")
		} else {
			b.fail(ctx, c, err)
		}
		b.askEmail(ctx, c)
		return
	}
	b.idle(ctx, c)
	u := c.sess.User()
	b.showMenu(c, "Добро пожаловать, "+u.DisplayName()+" ("+u.Role.Label(vocab.DefaultLanguage)+")!")
}

func (b *Bot) logout(ctx context.Context, c *chat) {
	b.dropFlow(c)
	c.draft.Clear()
	if err := c.sess.Logout(ctx); err != nil {
		b.fail(ctx, c, err)
		return
	}
	m := tgbotapi.NewMessage(c.id, "Вы вышли. Войти снова: /login")
	m.ReplyMarkup = tgbotapi.NewRemoveKeyboard(true)
	b.send(m)
}

func (b *Bot) showProfile(ctx context.Context, c *chat) {
	api := c.sess.Client()
	u, err := api.Me(ctx)
	if err != nil {
		b.fail(ctx, c, err)
		return
	}
	acts, err := api.MyActivity(ctx)
	if err != nil {
		b.fail(ctx, c, err)
		return
	}
	b.reply(c.id, profileText(u, acts, b.loc))
}

// handleMenu reacts to a reply-keyboard button. It reports whether text was one.
func (b *Bot) handleMenu(ctx context.Context, c *chat, text string) bool {
	action, ok := actionFor(text)
	if !ok {
		return false
	}
	if !b.require(c, action) {
		return true
	}
	// новый раздел прерывает незаконченный ввод
	if err := c.flow.Cancel(); err != nil {
		b.reply(c.id, "Списание уже отправлено, дождитесь ответа.")
		return true
	}
	b.idle(ctx, c)

	switch text {
	case btnDashboard:
		b.showDashboard(ctx, c)
	case btnMaterials:
		b.listMaterials(ctx, c, "")
	case btnDispense:
		b.startDispenseSearch(ctx, c)
	case btnRequests:
		b.listRequests(ctx, c)
	case btnJournal:
		b.showJournal(ctx, c)
	case btnReports:
		b.replyWith(c.id, "Выгрузки в Excel:", reportsKeyboard())
	case btnUsers:
		b.listUsers(ctx, c)
	case btnProfile:
		b.showProfile(ctx, c)
	case btnLogout:
		b.logout(ctx, c)
	}
	return true
}

func (b *Bot) showDashboard(ctx context.Context, c *chat) {
	st, err := c.sess.Client().DashboardStats(ctx)
	if err != nil {
		b.fail(ctx, c, err)
		return
	}
	b.reply(c.id, dashboardText(st, time.Now()))
}
