package bot

import (
	"context"
	"fmt"
	"strconv"

	"github.com/Spok95/clinic-stock/internal/catalog"
	"github.com/Spok95/clinic-stock/internal/client"
	"github.com/Spok95/clinic-stock/internal/dialog"
	"github.com/Spok95/clinic-stock/internal/vocab"
)

// maxButtons keeps a listing inside Telegram's message limits.
const maxButtons = 40

const materialFormat = "название; ед.; минимум[; начальное количество][; нс]\n" +
	"Например: Физраствор 0,9% 500 мл; мл; 5000; 10000\n" +
	"Единицы: шт, мл, г, уп, амп. «нс» — наркотическое средство."

func (b *Bot) listMaterials(ctx context.Context, c *chat, q string) {
	if !b.require(c, vocab.ActionViewMaterials) {
		return
	}
	ms, err := c.catalog().List(ctx, q)
	if err != nil {
		b.fail(ctx, c, err)
		return
	}
	b.idle(ctx, c)

	text := fmt.Sprintf("Материалы (%d)", len(ms))
	if q != "" {
		text = fmt.Sprintf("Поиск «%s»: найдено %d", q, len(ms))
	}
	if low := catalog.LowStock(ms); len(low) > 0 {
		text += fmt.Sprintf("\n⚠️ Ниже минимума: %d", len(low))
	}
	if len(ms) > maxButtons {
		ms = ms[:maxButtons]
		text += "\nПоказаны первые позиции, уточните поиск."
	}
	b.replyWith(c.id, text, materialsKeyboard(ms, "mat:open", c.sess.Can(vocab.ActionEditMaterials)))
}

func (b *Bot) onMaterialCallback(ctx context.Context, c *chat, args []string) {
	if len(args) == 0 {
		return
	}
	var id int64
	if len(args) > 1 {
		id, _ = strconv.ParseInt(args[1], 10, 64)
	}
	switch args[0] {
	case "open":
		b.showMaterial(ctx, c, id)
	case "search":
		b.setState(ctx, c, dialog.StateMatSearch, nil)
		b.replyWith(c.id, "Введите часть названия:", navKeyboard())
	case "new":
		if !b.require(c, vocab.ActionEditMaterials) {
			return
		}
		b.setState(ctx, c, dialog.StateMatCreate, nil)
		b.replyWith(c.id, "Новый материал. Формат:\n"+materialFormat, navKeyboard())
	case "edit":
		if !b.require(c, vocab.ActionEditMaterials) {
			return
		}
		b.setState(ctx, c, dialog.StateMatEdit, dialog.Payload{dialog.KeyMaterialID: float64(id)})
		b.replyWith(c.id, "Новые данные материала (остатки не меняются). Формат:\n"+materialFormat, navKeyboard())
	case "del":
		if !b.require(c, vocab.ActionEditMaterials) {
			return
		}
		m, err := c.catalog().Get(ctx, id)
		if err != nil {
			b.fail(ctx, c, err)
			return
		}
		b.replyWith(c.id, fmt.Sprintf("Удалить «%s»? Материал с историей движений удалить нельзя.", m.Name),
			confirmDeleteKeyboard(id))
	case "delok":
		if !b.require(c, vocab.ActionEditMaterials) {
			return
		}
		if err := c.catalog().Delete(ctx, id); err != nil {
			b.fail(ctx, c, err)
			return
		}
		b.reply(c.id, "Материал удалён.")
	}
}

func (b *Bot) showMaterial(ctx context.Context, c *chat, id int64) {
	if !b.require(c, vocab.ActionViewMaterials) {
		return
	}
	cat := c.catalog()
	m, err := cat.Get(ctx, id)
	if err != nil {
		b.fail(ctx, c, err)
		return
	}
	bs, err := cat.Batches(ctx, id)
	if err != nil {
		b.fail(ctx, c, err)
		return
	}
	b.replyWith(c.id, materialCard(m, bs),
		materialCardKeyboard(m, c.sess.Can(vocab.ActionDispense), c.sess.Can(vocab.ActionEditMaterials)))
}

func (b *Bot) onMaterialCreate(ctx context.Context, c *chat, text string) {
	in, err := catalog.ParseInput(text)
	if err != nil {
		b.fail(ctx, c, err)
		return
	}
	m, err := c.catalog().Create(ctx, in)
	if err != nil {
		b.fail(ctx, c, err)
		return
	}
	b.idle(ctx, c)
	b.reply(c.id, "Материал добавлен.")
	b.showMaterial(ctx, c, m.ID)
}

func (b *Bot) onMaterialEdit(ctx context.Context, c *chat, st *dialog.Item, text string) {
	id, ok := dialog.GetInt64(st.Payload, dialog.KeyMaterialID)
	if !ok {
		b.idle(ctx, c)
		b.reply(c.id, "Материал не выбран, начните заново.")
		return
	}
	in, err := catalog.ParseInput(text)
	if err != nil {
		b.fail(ctx, c, err)
		return
	}
	if _, err := c.catalog().Update(ctx, id, in); err != nil {
		b.fail(ctx, c, err)
		return
	}
	b.idle(ctx, c)
	b.reply(c.id, "Изменения сохранены.")
	b.showMaterial(ctx, c, id)
}

// stocked keeps materials that still have something to dispense.
func stocked(ms []client.Material) []client.Material {
	var out []client.Material
	for _, m := range ms {
		if m.TotalQuantity > 0 {
			out = append(out, m)
		}
	}
	return out
}
