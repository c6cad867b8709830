package dialog

type State string

const (
	StateIdle State = "idle"

	// Вход
	StateLoginEmail    State = "login_email"
	StateLoginPassword State = "login_password"

	// Материалы
	StateMatSearch State = "mat_search" // ожидание строки поиска
	StateMatCreate State = "mat_create" // "название; ед.; минимум[; начальное][; н]"
	StateMatEdit   State = "mat_edit"   // то же для выбранного материала

	// Списание
	StateDispQty     State = "disp_qty"
	StateDispPatient State = "disp_patient"
	StateDispReason  State = "disp_reason"

	// Заявки
	StateReqItem State = "req_item" // "название; кол-во; ед.[; ГГГГ-ММ-ДД]"

	// Пользователи
	StateUserCreate State = "user_create" // "email; пароль; роль[; ФИО]"
)

type Payload map[string]any

type Item struct {
	ChatID  int64
	State   State
	Payload Payload
}

// Payload keys.
const (
	KeyToken      = "token"
	KeyMaterialID = "material_id"
	KeyEmail      = "email"
	KeyPatient    = "patient"
)
