package bot

import (
	"context"
	"strconv"
	"strings"

	"github.com/Spok95/clinic-stock/internal/dialog"
	"github.com/Spok95/clinic-stock/internal/requestflow"
	"github.com/Spok95/clinic-stock/internal/vocab"
)

func (b *Bot) listRequests(ctx context.Context, c *chat) {
	rs, err := c.draft.List(ctx)
	if err != nil {
		b.fail(ctx, c, err)
		return
	}
	text := "Заявок пока нет."
	if len(rs) > 0 {
		parts := make([]string, 0, len(rs))
		for _, r := range rs {
			parts = append(parts, requestText(r, b.loc))
		}
		text = strings.Join(parts, "\n\n")
	}
	b.replyWith(c.id, text, requestsKeyboard(rs,
		c.sess.Can(vocab.ActionCreateRequest), c.sess.Can(vocab.ActionApproveRequest)))
}

func (b *Bot) onRequestCallback(ctx context.Context, c *chat, args []string) {
	if len(args) == 0 {
		return
	}
	switch args[0] {
	case "new":
		if !b.require(c, vocab.ActionCreateRequest) {
			return
		}
		c.draft.Clear()
		b.setState(ctx, c, dialog.StateReqItem, nil)
		b.replyWith(c.id, draftText(nil), navKeyboard())
	case "del":
		if len(args) < 2 {
			return
		}
		i, _ := strconv.Atoi(args[1])
		if err := c.draft.RemoveItem(i); err != nil {
			b.fail(ctx, c, err)
			return
		}
		b.showDraft(c)
	case "send":
		if !b.require(c, vocab.ActionCreateRequest) {
			return
		}
		r, err := c.draft.Submit(ctx)
		if err != nil {
			b.fail(ctx, c, err)
			return
		}
		b.idle(ctx, c)
		b.reply(c.id, "📨 Заявка отправлена.\n\n"+requestText(r, b.loc))
	case "approve":
		if len(args) < 2 {
			return
		}
		id, _ := strconv.ParseInt(args[1], 10, 64)
		r, err := c.draft.Approve(ctx, c.sess.User().Role, id)
		if err != nil {
			b.fail(ctx, c, err)
			return
		}
		b.reply(c.id, "✅ Заявка одобрена, партии оприходованы.\n\n"+requestText(r, b.loc))
	}
}

func (b *Bot) onRequestItem(ctx context.Context, c *chat, text string) {
	it, err := requestflow.ParseLine(text)
	if err != nil {
		b.fail(ctx, c, err)
		return
	}
	if err := c.draft.AddItem(it); err != nil {
		b.fail(ctx, c, err)
		return
	}
	b.showDraft(c)
}

func (b *Bot) showDraft(c *chat) {
	items := c.draft.Items()
	if len(items) == 0 {
		b.replyWith(c.id, draftText(nil), navKeyboard())
		return
	}
	b.replyWith(c.id, draftText(items), draftKeyboard(items))
}
