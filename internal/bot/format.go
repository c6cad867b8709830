package bot

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Spok95/clinic-stock/internal/client"
	"github.com/Spok95/clinic-stock/internal/dispense"
	"github.com/Spok95/clinic-stock/internal/vocab"
)

func qty(v float64) string { return decimal.NewFromFloat(v).String() }

func unitLabel(u vocab.Unit) string { return u.Label(vocab.DefaultLanguage) }

func materialTitle(m client.Material) string {
	s := fmt.Sprintf("%s — %s %s", m.Name, qty(m.TotalQuantity), unitLabel(m.Unit))
	if m.IsNarcotic {
		s = "🔒 " + s
	}
	if m.LowStock() {
		s = "⚠️ " + s
	}
	return s
}

func batchTitle(b client.Batch, unit vocab.Unit) string {
	s := fmt.Sprintf("Партия №%d · %s %s", b.ID, qty(b.CurrentQuantity), unitLabel(unit))
	if b.ExpirationDate != nil {
		s += " · до " + b.ExpirationDate.Format("02.01.2006")
	}
	return s
}

func materialCard(m client.Material, batches []client.Batch) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s\n", m.Name)
	fmt.Fprintf(&sb, "Остаток: %s %s (минимум %s)\n", qty(m.TotalQuantity), unitLabel(m.Unit), qty(m.MinQuantity))
	if m.IsNarcotic {
		sb.WriteString("Наркотическое средство: списание только с записью в журнал\n")
	}
	if m.LowStock() {
		sb.WriteString("⚠️ Остаток ниже минимального\n")
	}
	if len(batches) == 0 {
		sb.WriteString("\nПартий нет")
		return sb.String()
	}
	sb.WriteString("\nПартии:\n")
	for _, b := range batches {
		line := batchTitle(b, m.Unit)
		if b.CurrentQuantity <= 0 {
			line += " (израсходована)"
		}
		sb.WriteString("• " + line + "\n")
	}
	return strings.TrimRight(sb.String(), "\n")
}

func dashboardText(s client.DashboardStats, now time.Time) string {
	var sb strings.Builder
	sb.WriteString("📊 Сводка\n\n")

	if len(s.LowStockItems) == 0 {
		sb.WriteString("Все остатки в норме.\n")
	} else {
		sb.WriteString("Заканчиваются:\n")
		for _, m := range s.LowStockItems {
			fmt.Fprintf(&sb, "• %s — %s из %s %s\n", m.Name, qty(m.TotalQuantity), qty(m.MinQuantity), unitLabel(m.Unit))
		}
	}

	if len(s.ExpiringSoonBatches) > 0 {
		sb.WriteString("\nИстекает срок годности (30 дней):\n")
		for _, b := range s.ExpiringSoonBatches {
			name := fmt.Sprintf("материал №%d", b.MaterialID)
			unit := vocab.Unit("")
			if b.Material != nil {
				name, unit = b.Material.Name, b.Material.Unit
			}
			days := int(b.ExpirationDate.Sub(now).Hours() / 24)
			fmt.Fprintf(&sb, "• %s, партия №%d: %s %s, до %s (%d дн.)\n",
				name, b.ID, qty(b.CurrentQuantity), unitLabel(unit), b.ExpirationDate.Format("02.01.2006"), days)
		}
	}

	if len(s.MaterialDistribution) > 0 {
		sb.WriteString("\nБольше всего на складе:\n")
		for i, d := range s.MaterialDistribution {
			fmt.Fprintf(&sb, "%d. %s — %s\n", i+1, d.Name, qty(d.TotalQuantity))
		}
	}
	return strings.TrimRight(sb.String(), "\n")
}

func dispenseSummary(w *dispense.Workflow) string {
	m := w.Material()
	var sb strings.Builder
	fmt.Fprintf(&sb, "Списание: %s\n", m.Name)
	if b := w.Batch(); b != nil {
		fmt.Fprintf(&sb, "Партия: №%d (остаток %s)\n", b.ID, qty(b.CurrentQuantity))
	}
	fmt.Fprintf(&sb, "Количество: %s %s", w.Quantity().String(), unitLabel(m.Unit))
	return sb.String()
}

func requestText(r client.Request, loc *time.Location) string {
	status := "на рассмотрении"
	if r.Status == client.RequestApproved {
		status = "одобрена"
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "Заявка №%d от %s — %s\n", r.ID, r.CreatedAt.In(loc).Format("02.01.2006"), status)
	for _, it := range r.Items {
		sb.WriteString("  • " + itemText(it) + "\n")
	}
	return strings.TrimRight(sb.String(), "\n")
}

func itemText(it client.RequestItem) string {
	s := fmt.Sprintf("%s — %s %s", it.MaterialName, qty(it.Quantity), unitLabel(it.Unit))
	if it.ExpirationDate != nil {
		s += ", годен до " + it.ExpirationDate.Format("02.01.2006")
	}
	return s
}

func draftText(items []client.RequestItem) string {
	if len(items) == 0 {
		return "Заявка пуста. Пришлите позицию: название; количество; ед.[; ГГГГ-ММ-ДД]"
	}
	var sb strings.Builder
	sb.WriteString("Новая заявка:\n")
	for i, it := range items {
		fmt.Fprintf(&sb, "%d. %s\n", i+1, itemText(it))
	}
	sb.WriteString("\nПришлите ещё позицию или отправьте заявку.")
	return sb.String()
}

func journalText(logs []client.NarcoticLog, loc *time.Location) string {
	if len(logs) == 0 {
		return "Журнал наркотических средств пуст."
	}
	var sb strings.Builder
	sb.WriteString("📒 Журнал НС (последние записи)\n")
	for _, l := range logs {
		fmt.Fprintf(&sb, "\n%s · %s · %s %s\nПациент: %s\nПричина: %s\nСотрудник: %s\n",
			l.CreatedAt.In(loc).Format("02.01.2006 15:04"), l.Material.Name,
			qty(-l.Delta), unitLabel(l.Material.Unit),
			l.PatientInfo, l.Reason, l.User.DisplayName())
	}
	return strings.TrimRight(sb.String(), "\n")
}

func profileText(u client.User, acts []client.Activity, loc *time.Location) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s\n%s\nРоль: %s\n", u.DisplayName(), u.Email, u.Role.Label(vocab.DefaultLanguage))
	if !u.IsActive {
		sb.WriteString("Учётная запись отключена\n")
	}
	if len(acts) > 0 {
		sb.WriteString("\nПоследние действия:\n")
		for i, a := range acts {
			if i == 10 {
				break
			}
			line := fmt.Sprintf("• %s %s", a.CreatedAt.In(loc).Format("02.01 15:04"), a.Action)
			if a.Details != "" {
				line += " — " + a.Details
			}
			sb.WriteString(line + "\n")
		}
	}
	return strings.TrimRight(sb.String(), "\n")
}
