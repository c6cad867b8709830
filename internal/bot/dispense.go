package bot

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/Spok95/clinic-stock/internal/apperr"
	"github.com/Spok95/clinic-stock/internal/dialog"
	"github.com/Spok95/clinic-stock/internal/dispense"
	"github.com/Spok95/clinic-stock/internal/vocab"
)

func (b *Bot) startDispenseSearch(ctx context.Context, c *chat) {
	ms, err := c.catalog().List(ctx, "")
	if err != nil {
		b.fail(ctx, c, err)
		return
	}
	ms = stocked(ms)
	if len(ms) == 0 {
		b.reply(c.id, "Нет материалов с остатком.")
		return
	}
	if len(ms) > maxButtons {
		ms = ms[:maxButtons]
	}
	b.replyWith(c.id, "Что списываем?", materialsKeyboard(ms, "disp:start", false))
}

func (b *Bot) onDispenseCallback(ctx context.Context, c *chat, args []string) {
	if !b.require(c, vocab.ActionDispense) || len(args) == 0 {
		return
	}
	var id int64
	if len(args) > 1 {
		id, _ = strconv.ParseInt(args[1], 10, 64)
	}
	switch args[0] {
	case "start":
		b.dispenseStart(ctx, c, id)
	case "batch":
		b.dispenseBatch(ctx, c, id)
	case "qty":
		b.askQuantity(ctx, c)
	case "confirm":
		b.dispenseSubmit(ctx, c)
	}
}

func (b *Bot) dispenseStart(ctx context.Context, c *chat, materialID int64) {
	m, err := c.sess.Client().Material(ctx, materialID)
	if err != nil {
		b.fail(ctx, c, err)
		return
	}
	if err := c.flow.SelectMaterial(ctx, m); err != nil {
		b.fail(ctx, c, err)
		return
	}
	avail := c.flow.Available()
	if len(avail) == 0 {
		b.dropFlow(c)
		b.reply(c.id, "У материала нет партий с остатком.")
		return
	}
	if len(avail) == 1 {
		b.dispenseBatch(ctx, c, avail[0].ID)
		return
	}
	b.replyWith(c.id, fmt.Sprintf("%s: выберите партию", m.Name), batchesKeyboard(avail, m.Unit))
}

func (b *Bot) dispenseBatch(ctx context.Context, c *chat, batchID int64) {
	if err := c.flow.ChooseBatch(batchID); err != nil {
		b.fail(ctx, c, err)
		return
	}
	b.askQuantity(ctx, c)
}

func (b *Bot) askQuantity(ctx context.Context, c *chat) {
	bt := c.flow.Batch()
	if bt == nil {
		b.reply(c.id, "Сначала выберите материал и партию.")
		return
	}
	b.setState(ctx, c, dialog.StateDispQty, nil)
	b.replyWith(c.id, fmt.Sprintf("Сколько списать? В партии №%d: %s %s",
		bt.ID, qty(bt.CurrentQuantity), unitLabel(c.flow.Material().Unit)), navKeyboard())
}

func (b *Bot) onDispenseQty(ctx context.Context, c *chat, text string) {
	if err := c.flow.EnterQuantity(text); err != nil {
		b.fail(ctx, c, err)
		return
	}
	if err := c.flow.Validate(); err != nil {
		b.fail(ctx, c, err)
		return
	}
	if c.flow.State() == dispense.ComplianceCapture {
		b.askPatient(ctx, c)
		return
	}
	b.confirmDispense(ctx, c)
}

func (b *Bot) askPatient(ctx context.Context, c *chat) {
	b.setState(ctx, c, dialog.StateDispPatient, nil)
	b.replyWith(c.id, "Наркотическое средство. Укажите пациента (ФИО, номер карты):", navKeyboard())
}

func (b *Bot) onDispensePatient(ctx context.Context, c *chat, text string) {
	if text == "" {
		b.reply(c.id, "Данные пациента обязательны.")
		return
	}
	b.setState(ctx, c, dialog.StateDispReason, dialog.Payload{dialog.KeyPatient: text})
	b.replyWith(c.id, "Причина назначения:", navKeyboard())
}

func (b *Bot) onDispenseReason(ctx context.Context, c *chat, st *dialog.Item, text string) {
	patient, _ := dialog.GetString(st.Payload, dialog.KeyPatient)
	if err := c.flow.SetCompliance(patient, text); err != nil {
		b.fail(ctx, c, err)
		return
	}
	if _, err := c.flow.Submission(); err != nil {
		b.fail(ctx, c, err)
		b.askPatient(ctx, c)
		return
	}
	b.confirmDispense(ctx, c)
}

func (b *Bot) confirmDispense(ctx context.Context, c *chat) {
	b.idle(ctx, c)
	b.replyWith(c.id, dispenseSummary(c.flow)+"\n\nПодтвердите списание.", confirmDispenseKeyboard())
}

func (b *Bot) dispenseSubmit(ctx context.Context, c *chat) {
	rc, err := c.flow.Submit(ctx)
	if err != nil {
		var (
			ce *apperr.ComplianceError
			sr *apperr.ServerRejection
		)
		switch {
		case errors.As(err, &ce):
			b.fail(ctx, c, err)
			b.askPatient(ctx, c)
		case errors.As(err, &sr):
			b.setState(ctx, c, dialog.StateDispQty, nil)
			b.replyWith(c.id, "Сервер отклонил списание: "+c.flow.LastError()+
				"\nВведённые данные сохранены: повторите или измените количество.", retryDispenseKeyboard())
		case errors.Is(err, dispense.ErrWrongState):
			b.reply(c.id, "Нечего отправлять, начните списание заново.")
		default:
			b.fail(ctx, c, err)
			if c.flow.State() == dispense.QuantityEntry {
				b.replyWith(c.id, "Можно повторить отправку.", retryDispenseKeyboard())
			}
		}
		return
	}

	m := rc.Material
	text := fmt.Sprintf("✅ Списано %s %s: %s", qty(-rc.Transaction.Delta), unitLabel(m.Unit), m.Name)
	if rc.RefreshErr != nil {
		text += "\nНе удалось обновить остатки: " + apperr.Describe(rc.RefreshErr)
	} else {
		text += "\n\n" + materialCard(m, rc.Batches)
	}
	b.idle(ctx, c)
	b.reply(c.id, text)
}
