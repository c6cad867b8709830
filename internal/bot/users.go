package bot

import (
	"context"
	"strconv"
	"strings"

	"github.com/Spok95/clinic-stock/internal/apperr"
	"github.com/Spok95/clinic-stock/internal/client"
	"github.com/Spok95/clinic-stock/internal/dialog"
	"github.com/Spok95/clinic-stock/internal/vocab"
)

const userFormat = "email; пароль; роль[; ФИО]\nРоли: admin, head_nurse, staff"

func (b *Bot) listUsers(ctx context.Context, c *chat) {
	us, err := c.sess.Client().Users(ctx)
	if err != nil {
		b.fail(ctx, c, err)
		return
	}
	b.replyWith(c.id, "Сотрудники:", usersKeyboard(us, c.sess.Can(vocab.ActionManageUsers)))
}

func (b *Bot) onUserCallback(ctx context.Context, c *chat, args []string) {
	if len(args) == 0 {
		return
	}
	switch args[0] {
	case "open":
		if !b.require(c, vocab.ActionViewUsers) || len(args) < 2 {
			return
		}
		id, _ := strconv.ParseInt(args[1], 10, 64)
		api := c.sess.Client()
		u, err := api.User(ctx, id)
		if err != nil {
			b.fail(ctx, c, err)
			return
		}
		acts, err := api.UserActivity(ctx, id)
		if err != nil {
			b.fail(ctx, c, err)
			return
		}
		b.reply(c.id, profileText(u, acts, b.loc))
	case "new":
		if !b.require(c, vocab.ActionManageUsers) {
			return
		}
		b.setState(ctx, c, dialog.StateUserCreate, nil)
		b.replyWith(c.id, "Новый сотрудник. Формат:\n"+userFormat, navKeyboard())
	}
}

func (b *Bot) onUserCreate(ctx context.Context, c *chat, text string) {
	in, err := parseUserLine(text)
	if err != nil {
		b.fail(ctx, c, err)
		return
	}
	u, err := c.sess.Client().CreateUser(ctx, in)
	if err != nil {
		b.fail(ctx, c, err)
		return
	}
	b.idle(ctx, c)
	b.reply(c.id, "Сотрудник добавлен: "+u.DisplayName()+" ("+u.Role.Label(vocab.DefaultLanguage)+")")
}

// parseUserLine reads "email; password; role[; full name]".
func parseUserLine(line string) (client.UserCreate, error) {
	parts := strings.Split(line, ";")
	if len(parts) < 3 || len(parts) > 4 {
		return client.UserCreate{}, apperr.Invalid("", "expected: email; password; role[; full name]")
	}
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	if !strings.Contains(parts[0], "@") {
		return client.UserCreate{}, apperr.Invalid("email", "not an e-mail: %q", parts[0])
	}
	if len(parts[1]) < 6 {
		return client.UserCreate{}, apperr.Invalid("password", "at least 6 characters")
	}
	role, err := vocab.ParseRole(parts[2])
	if err != nil {
		return client.UserCreate{}, apperr.Invalid("role", "%v", err)
	}
	in := client.UserCreate{Email: strings.ToLower(parts[0]), Password: parts[1], Role: role}
	if len(parts) == 4 {
		in.FullName = parts[3]
	}
	return in, nil
}
