// Package forms holds the lead form schemas. The struct tags are the single
// source of truth: the validator enforces them and Describe publishes them
// to the browser.
package forms

// SchemaID names a form type.
type SchemaID string

const (
	SchemaBrief        SchemaID = "brief"
	SchemaConsultation SchemaID = "consultation"
)

// MaxProducts is the largest number of products a brief may carry.
const MaxProducts = 10

// Record is a validated submission.
type Record interface {
	Schema() SchemaID
	// ContactName is the display name used in notification subjects.
	ContactName() string
	ContactEmail() string
}

// ProductSpec describes one product requested in a brief.
type ProductSpec struct {
	Brand       string `json:"brand" binding:"required,max=100" msg:"required=Название бренда обязательно;max=Название бренда слишком длинное"`
	Collection  string `json:"collection" binding:"required,max=100" msg:"required=Название коллекции обязательно;max=Название коллекции слишком длинное"`
	ProductName string `json:"productName" binding:"required,max=150" msg:"required=Рабочее название продукта обязательно;max=Название продукта слишком длинное"`

	MarketingClaims           string `json:"marketingClaims,omitempty" binding:"omitempty,max=1000" msg:"max=Маркетинговые клеймы слишком длинные"`
	MarketingClaimsProperties string `json:"marketingClaimsProperties,omitempty" binding:"omitempty,max=1000" msg:"max=Свойства слишком длинные"`
	Analogues                 string `json:"analogues,omitempty" binding:"omitempty,max=1000" msg:"max=Аналоги слишком длинные"`

	PrimaryPackaging   string `json:"primaryPackaging,omitempty" binding:"omitempty,max=1000" msg:"max=Описание упаковки слишком длинное"`
	PackagingAnalogues string `json:"packagingAnalogues,omitempty" binding:"omitempty,max=1000" msg:"max=Аналоги упаковки слишком длинные"`
	PackagingVolume    string `json:"packagingVolume,omitempty" binding:"omitempty,max=50" msg:"max=Объем упаковки слишком длинный"`

	DesignIdeas        string `json:"designIdeas,omitempty" binding:"omitempty,max=1000" msg:"max=Идеи дизайнов слишком длинные"`
	TextureDescription string `json:"textureDescription,omitempty" binding:"omitempty,max=1000" msg:"max=Описание текстуры слишком длинное"`
	Components         string `json:"components,omitempty" binding:"omitempty,max=1000" msg:"max=Компоненты слишком длинные"`
	Fragrance          string `json:"fragrance,omitempty" binding:"omitempty,max=500" msg:"max=Отдушка слишком длинная"`
	TextureBench       string `json:"textureBench,omitempty" binding:"omitempty,max=200" msg:"max=Бенч слишком длинный"`
	TonesCount         string `json:"tonesCount,omitempty" binding:"omitempty,max=50" msg:"max=Количество тонов слишком длинное"`

	PurchaseVolumes     string `json:"purchaseVolumes,omitempty" binding:"omitempty,max=200" msg:"max=Объемы закупки слишком длинные"`
	TargetCost          string `json:"targetCost,omitempty" binding:"omitempty,max=100" msg:"max=Целевая стоимость слишком длинная"`
	PlannedDeliveryDate string `json:"plannedDeliveryDate,omitempty" binding:"omitempty,max=100" msg:"max=Дата доставки слишком длинная"`
}

// BriefSubmission is the detailed multi-product request.
type BriefSubmission struct {
	Name    string `json:"name" binding:"required,max=100" msg:"required=Имя обязательно;max=Имя слишком длинное"`
	Company string `json:"company,omitempty" binding:"omitempty,max=200" msg:"max=Название компании слишком длинное"`
	Email   string `json:"email" binding:"required,email,max=100" msg:"required=Некорректный email;email=Некорректный email;max=Email слишком длинный"`
	Phone   string `json:"phone,omitempty" binding:"omitempty,max=30" msg:"max=Телефон слишком длинный"`

	CSRFToken string `json:"csrfToken" binding:"required" msg:"required=CSRF token is required"`
	// Honeypot is hidden from humans and must arrive as an empty string.
	Honeypot *string `json:"honeypot" binding:"required,len=0" msg:"required=Bot detected;len=Bot detected"`

	Products []ProductSpec `json:"products" binding:"required,min=1,max=10,dive" msg:"required=Добавьте хотя бы один продукт;min=Добавьте хотя бы один продукт;max=Максимум 10 продуктов"`
}

func (b *BriefSubmission) Schema() SchemaID     { return SchemaBrief }
func (b *BriefSubmission) ContactName() string  { return b.Name }
func (b *BriefSubmission) ContactEmail() string { return b.Email }

// ConsultationSubmission is the short callback request.
type ConsultationSubmission struct {
	FullName string `json:"fullName" binding:"required,max=150" msg:"required=ФИО обязательно;max=ФИО слишком длинное"`
	Email    string `json:"email" binding:"required,email,max=100" msg:"required=Некорректный email;email=Некорректный email;max=Email слишком длинный"`
	Phone    string `json:"phone" binding:"required,max=30" msg:"required=Телефон обязателен;max=Телефон слишком длинный"`
	Question string `json:"question" binding:"required,max=2000" msg:"required=Вопрос обязателен;max=Вопрос слишком длинный"`

	CSRFToken string  `json:"csrfToken" binding:"required" msg:"required=CSRF token is required"`
	Honeypot  *string `json:"honeypot" binding:"required,len=0" msg:"required=Bot detected;len=Bot detected"`
}

func (c *ConsultationSubmission) Schema() SchemaID     { return SchemaConsultation }
func (c *ConsultationSubmission) ContactName() string  { return c.FullName }
func (c *ConsultationSubmission) ContactEmail() string { return c.Email }
