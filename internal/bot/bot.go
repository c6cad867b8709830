package bot

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/Spok95/clinic-stock/internal/apperr"
	"github.com/Spok95/clinic-stock/internal/catalog"
	"github.com/Spok95/clinic-stock/internal/client"
	"github.com/Spok95/clinic-stock/internal/dialog"
	"github.com/Spok95/clinic-stock/internal/dispense"
	"github.com/Spok95/clinic-stock/internal/requestflow"
	"github.com/Spok95/clinic-stock/internal/session"
)

// Telegram is the part of *tgbotapi.BotAPI the bot uses.
type Telegram interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
}

// chat is everything one Telegram chat owns: its session and the
// workflows it is in the middle of.
type chat struct {
	id    int64
	sess  *session.Session
	flow  *dispense.Workflow
	draft *requestflow.Draft
	// restored is set once the stored token has been checked against the API.
	restored bool
}

func (c *chat) catalog() *catalog.Manager { return catalog.New(c.sess.Client()) }

type Bot struct {
	api    Telegram
	log    *slog.Logger
	states dialog.Store
	rest   *client.Client
	loc    *time.Location
	chats  map[int64]*chat
}

func New(api Telegram, log *slog.Logger, states dialog.Store, rest *client.Client, loc *time.Location) *Bot {
	if loc == nil {
		loc = time.UTC
	}
	return &Bot{api: api, log: log, states: states, rest: rest, loc: loc, chats: map[int64]*chat{}}
}

// Run processes updates one at a time until ctx is done.
func (b *Bot) Run(ctx context.Context, timeoutSec int) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = timeoutSec
	updates := b.api.GetUpdatesChan(u)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case upd := <-updates:
			b.Handle(ctx, upd)
		}
	}
}

func (b *Bot) Handle(ctx context.Context, upd tgbotapi.Update) {
	switch {
	case upd.Message != nil:
		b.onMessage(ctx, upd.Message)
	case upd.CallbackQuery != nil:
		b.onCallback(ctx, upd.CallbackQuery)
	}
}

// chat returns the chat's state, restoring a persisted token on first use.
// A restore that failed for a reason other than 401 is retried on the next update.
func (b *Bot) chat(ctx context.Context, chatID int64) *chat {
	c, ok := b.chats[chatID]
	if !ok {
		log := b.log.With("chat_id", chatID)
		sess := session.New(log, b.rest, dialog.NewTokens(b.states, chatID))
		c = &chat{id: chatID, sess: sess}
		c.flow = dispense.New(sess.Client(), log)
		c.draft = requestflow.New(sess.Client(), log)
		b.chats[chatID] = c
	}
	if !c.restored && c.sess.State() != session.Authenticated {
		b.restore(ctx, c)
	}
	return c
}

func (b *Bot) restore(ctx context.Context, c *chat) {
	ok, err := c.sess.Restore(ctx)
	if err != nil {
		b.log.Warn("restore session failed", "chat_id", c.id, "err", err)
		return
	}
	c.restored = true
	if ok {
		b.log.Debug("session restored", "chat_id", c.id, "user_id", c.sess.User().ID)
	}
}

func (b *Bot) onMessage(ctx context.Context, msg *tgbotapi.Message) {
	c := b.chat(ctx, msg.Chat.ID)
	if msg.IsCommand() {
		b.handleCommand(ctx, c, msg)
		return
	}
	text := strings.TrimSpace(msg.Text)
	if c.sess.State() == session.Authenticated && b.handleMenu(ctx, c, text) {
		return
	}
	b.handleStateMessage(ctx, c, msg)
}

func (b *Bot) handleCommand(ctx context.Context, c *chat, msg *tgbotapi.Message) {
	switch msg.Command() {
	case "start":
		if c.sess.State() == session.Authenticated {
			b.showMenu(c, "С возвращением, "+c.sess.User().DisplayName()+"!")
			return
		}
		b.askEmail(ctx, c)
	case "login":
		b.askEmail(ctx, c)
	case "logout":
		b.logout(ctx, c)
	case "me":
		if b.require(c, "") {
			b.showProfile(ctx, c)
		}
	case "cancel":
		b.cancel(ctx, c)
	case "help":
		b.reply(c.id, helpText)
	default:
		b.reply(c.id, "Не знаю такую команду. Наберите /help")
	}
}

const helpText = "Команды:\n" +
	"/start — начать работу\n" +
	"/login — войти под учётной записью клиники\n" +
	"/me — профиль и последние действия\n" +
	"/cancel — прервать текущую операцию\n" +
	"/logout — выйти"

func (b *Bot) handleStateMessage(ctx context.Context, c *chat, msg *tgbotapi.Message) {
	st, err := b.states.Get(ctx, c.id)
	if err != nil {
		b.log.Error("dialog state", "chat_id", c.id, "err", err)
		b.reply(c.id, "Внутренняя ошибка, попробуйте ещё раз.")
		return
	}
	text := strings.TrimSpace(msg.Text)

	switch st.State {
	case dialog.StateLoginEmail:
		b.onEmail(ctx, c, text)
		return
	case dialog.StateLoginPassword:
		b.onPassword(ctx, c, st, msg)
		return
	}

	if c.sess.State() != session.Authenticated {
		b.reply(c.id, "Сначала войдите: /login")
		return
	}

	switch st.State {
	case dialog.StateMatSearch:
		b.listMaterials(ctx, c, text)
	case dialog.StateMatCreate:
		b.onMaterialCreate(ctx, c, text)
	case dialog.StateMatEdit:
		b.onMaterialEdit(ctx, c, st, text)
	case dialog.StateDispQty:
		b.onDispenseQty(ctx, c, text)
	case dialog.StateDispPatient:
		b.onDispensePatient(ctx, c, text)
	case dialog.StateDispReason:
		b.onDispenseReason(ctx, c, st, text)
	case dialog.StateReqItem:
		b.onRequestItem(ctx, c, text)
	case dialog.StateUserCreate:
		b.onUserCreate(ctx, c, text)
	default:
		b.showMenu(c, "Выберите раздел в меню.")
	}
}

func (b *Bot) onCallback(ctx context.Context, cb *tgbotapi.CallbackQuery) {
	if cb.Message == nil {
		return
	}
	c := b.chat(ctx, cb.Message.Chat.ID)
	if err := b.answerCallback(cb, "", false); err != nil {
		b.log.Debug("answer callback", "chat_id", c.id, "err", err)
	}

	parts := strings.Split(cb.Data, ":")
	if parts[0] == "nav" {
		b.cancel(ctx, c)
		return
	}
	if !b.require(c, "") {
		return
	}
	switch parts[0] {
	case "mat":
		b.onMaterialCallback(ctx, c, parts[1:])
	case "disp":
		b.onDispenseCallback(ctx, c, parts[1:])
	case "req":
		b.onRequestCallback(ctx, c, parts[1:])
	case "jr":
		b.onJournalCallback(ctx, c, parts[1:])
	case "usr":
		b.onUserCallback(ctx, c, parts[1:])
	default:
		b.log.Warn("unknown callback", "data", cb.Data)
	}
}

// cancel discards whatever the chat was doing and returns to the menu.
func (b *Bot) cancel(ctx context.Context, c *chat) {
	if err := c.flow.Cancel(); errors.Is(err, dispense.ErrBusy) {
		b.reply(c.id, "Списание уже отправлено, дождитесь ответа.")
		return
	}
	c.draft.Clear()
	b.idle(ctx, c)
	if c.sess.State() == session.Authenticated {
		b.showMenu(c, "Операция отменена.")
		return
	}
	b.reply(c.id, "Операция отменена.")
}

func (b *Bot) idle(ctx context.Context, c *chat) {
	if err := dialog.Idle(ctx, b.states, c.id); err != nil {
		b.log.Error("reset dialog", "chat_id", c.id, "err", err)
	}
}

func (b *Bot) setState(ctx context.Context, c *chat, st dialog.State, p dialog.Payload) {
	if err := dialog.Transition(ctx, b.states, c.id, st, p); err != nil {
		b.log.Error("set dialog state", "chat_id", c.id, "state", st, "err", err)
	}
}

// fail reports err to the chat. An expired session also drops the menu.
func (b *Bot) fail(ctx context.Context, c *chat, err error) {
	if errors.Is(err, apperr.ErrAuthExpired) {
		b.dropFlow(c)
		c.draft.Clear()
		m := tgbotapi.NewMessage(c.id, apperr.Describe(err))
		m.ReplyMarkup = tgbotapi.NewRemoveKeyboard(true)
		b.send(m)
		return
	}
	var nf *apperr.NetworkFailure
	if errors.As(err, &nf) {
		b.log.Warn("api unreachable", "chat_id", c.id, "op", nf.Op, "err", nf.Err)
	}
	b.reply(c.id, apperr.Describe(err))
}
