package bot

import (
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/Spok95/clinic-stock/internal/client"
	"github.com/Spok95/clinic-stock/internal/vocab"
)

const (
	btnDashboard = "📊 Сводка"
	btnMaterials = "📦 Материалы"
	btnDispense  = "💉 Списание"
	btnRequests  = "📝 Заявки"
	btnJournal   = "📒 Журнал НС"
	btnReports   = "📄 Отчёты"
	btnUsers     = "👥 Сотрудники"
	btnProfile   = "👤 Профиль"
	btnLogout    = "🚪 Выйти"
)

type menuItem struct {
	label  string
	action vocab.Action
}

// menu lists every section with the capability that unlocks it; an empty
// action means any logged-in user.
var menu = []menuItem{
	{btnDashboard, vocab.ActionViewDashboard},
	{btnMaterials, vocab.ActionViewMaterials},
	{btnDispense, vocab.ActionDispense},
	{btnRequests, vocab.ActionViewRequests},
	{btnJournal, vocab.ActionViewNarcoticJournal},
	{btnReports, vocab.ActionViewReports},
	{btnUsers, vocab.ActionViewUsers},
	{btnProfile, ""},
	{btnLogout, ""},
}

func menuLabels(role vocab.Role) []string {
	var out []string
	for _, it := range menu {
		if it.action == "" || role.Can(it.action) {
			out = append(out, it.label)
		}
	}
	return out
}

// menuKeyboard Нижняя панель: только разделы, доступные роли, по две кнопки в ряд.
func menuKeyboard(role vocab.Role) tgbotapi.ReplyKeyboardMarkup {
	labels := menuLabels(role)
	var rows [][]tgbotapi.KeyboardButton
	for i := 0; i < len(labels); i += 2 {
		row := []tgbotapi.KeyboardButton{tgbotapi.NewKeyboardButton(labels[i])}
		if i+1 < len(labels) {
			row = append(row, tgbotapi.NewKeyboardButton(labels[i+1]))
		}
		rows = append(rows, row)
	}
	return tgbotapi.ReplyKeyboardMarkup{ResizeKeyboard: true, Keyboard: rows}
}

func actionFor(label string) (vocab.Action, bool) {
	for _, it := range menu {
		if it.label == label {
			return it.action, true
		}
	}
	return "", false
}

func navKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(navRow())
}

func navRow() []tgbotapi.InlineKeyboardButton {
	return tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("✖️ Отменить", "nav:cancel"))
}

// materialsKeyboard: one button per material, low stock marked.
func materialsKeyboard(ms []client.Material, prefix string, canEdit bool) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	for _, m := range ms {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(materialTitle(m), fmt.Sprintf("%s:%d", prefix, m.ID)),
		))
	}
	tools := tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("🔍 Поиск", "mat:search"))
	if canEdit {
		tools = append(tools, tgbotapi.NewInlineKeyboardButtonData("➕ Новый", "mat:new"))
	}
	rows = append(rows, tools)
	return tgbotapi.InlineKeyboardMarkup{InlineKeyboard: rows}
}

func materialCardKeyboard(m client.Material, canDispense, canEdit bool) tgbotapi.InlineKeyboardMarkup {
	var row []tgbotapi.InlineKeyboardButton
	if canDispense && m.TotalQuantity > 0 {
		row = append(row, tgbotapi.NewInlineKeyboardButtonData("💉 Списать", fmt.Sprintf("disp:start:%d", m.ID)))
	}
	if canEdit {
		row = append(row,
			tgbotapi.NewInlineKeyboardButtonData("✏️ Изменить", fmt.Sprintf("mat:edit:%d", m.ID)),
			tgbotapi.NewInlineKeyboardButtonData("🗑 Удалить", fmt.Sprintf("mat:del:%d", m.ID)),
		)
	}
	if len(row) == 0 {
		return tgbotapi.NewInlineKeyboardMarkup(navRow())
	}
	return tgbotapi.NewInlineKeyboardMarkup(row, navRow())
}

func batchesKeyboard(bs []client.Batch, unit vocab.Unit) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	for _, bt := range bs {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(batchTitle(bt, unit), fmt.Sprintf("disp:batch:%d", bt.ID)),
		))
	}
	rows = append(rows, navRow())
	return tgbotapi.InlineKeyboardMarkup{InlineKeyboard: rows}
}

func confirmDeleteKeyboard(id int64) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🗑 Да, удалить", fmt.Sprintf("mat:delok:%d", id)),
			tgbotapi.NewInlineKeyboardButtonData("↩️ Оставить", fmt.Sprintf("mat:open:%d", id)),
		),
		navRow(),
	)
}

func confirmDispenseKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("✅ Списать", "disp:confirm")),
		navRow(),
	)
}

func retryDispenseKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🔁 Повторить", "disp:confirm"),
			tgbotapi.NewInlineKeyboardButtonData("✏️ Количество", "disp:qty"),
		),
		navRow(),
	)
}

func draftKeyboard(items []client.RequestItem) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	for i, it := range items {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🗑 "+it.MaterialName, fmt.Sprintf("req:del:%d", i)),
		))
	}
	rows = append(rows,
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("📨 Отправить заявку", "req:send")),
		navRow(),
	)
	return tgbotapi.InlineKeyboardMarkup{InlineKeyboard: rows}
}

func requestsKeyboard(rs []client.Request, canCreate, canApprove bool) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	if canApprove {
		for _, r := range rs {
			if r.Status == client.RequestPending {
				rows = append(rows, tgbotapi.NewInlineKeyboardRow(
					tgbotapi.NewInlineKeyboardButtonData(fmt.Sprintf("✅ Одобрить №%d", r.ID), fmt.Sprintf("req:approve:%d", r.ID)),
				))
			}
		}
	}
	if canCreate {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("➕ Новая заявка", "req:new")))
	}
	return tgbotapi.InlineKeyboardMarkup{InlineKeyboard: rows}
}

func usersKeyboard(us []client.User, canManage bool) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	for _, u := range us {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(u.DisplayName(), fmt.Sprintf("usr:open:%d", u.ID)),
		))
	}
	if canManage {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("➕ Добавить", "usr:new")))
	}
	return tgbotapi.InlineKeyboardMarkup{InlineKeyboard: rows}
}

func reportsKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📦 Остатки (xlsx)", "jr:stock"),
			tgbotapi.NewInlineKeyboardButtonData("📒 Журнал НС (xlsx)", "jr:export"),
		),
	)
}
