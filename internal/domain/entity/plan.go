package entity

// PlanType - тариф подписки пользователя
type PlanType string

const (
	PlanFree       PlanType = "FREE"
	PlanPro        PlanType = "PRO"
	PlanEnterprise PlanType = "ENTERPRISE"
)

// PlanLimits описывает количественные ограничения тарифа
type PlanLimits struct {
	MaxQuizzes      int `json:"max_quizzes"`
	MaxParticipants int `json:"max_participants"`
}

// Plan - описание тарифа для отображения клиенту
type Plan struct {
	Type        PlanType   `json:"type"`
	Name        string     `json:"name"`
	Price       string     `json:"price"`
	Description string     `json:"description"`
	Features    []string   `json:"features"`
	Limits      PlanLimits `json:"limits"`
}

var plans = []Plan{
	{
		Type:        PlanFree,
		Name:        "Free",
		Price:       "$0",
		Description: "Perfect for trying out QuizMaster.",
		Features: []string{
			"Up to 3 Quizzes",
			"50 Participants per Quiz",
			"Basic Analytics",
			"Community Support",
		},
		Limits: PlanLimits{MaxQuizzes: 3, MaxParticipants: 50},
	},
	{
		Type:        PlanPro,
		Name:        "Pro",
		Price:       "$19",
		Description: "For professional hosts and educators.",
		Features: []string{
			"Up to 20 Quizzes",
			"500 Participants per Quiz",
			"Advanced Analytics",
			"Priority Email Support",
			"Custom Branding (Basic)",
		},
		Limits: PlanLimits{MaxQuizzes: 20, MaxParticipants: 500},
	},
	{
		Type:        PlanEnterprise,
		Name:        "Enterprise",
		Price:       "$99",
		Description: "For large organizations and events.",
		Features: []string{
			"Unlimited Quizzes",
			"Unlimited Participants",
			"Real-time Data Export",
			"Dedicated Account Manager",
			"Full Custom Branding",
			"SSO Integration",
		},
		Limits: PlanLimits{MaxQuizzes: 999999, MaxParticipants: 999999},
	},
}

// Plans возвращает каталог тарифов (копию)
func Plans() []Plan {
	out := make([]Plan, len(plans))
	copy(out, plans)
	return out
}

// IsValid проверяет, что тариф известен
func (p PlanType) IsValid() bool {
	switch p {
	case PlanFree, PlanPro, PlanEnterprise:
		return true
	}
	return false
}

// PlanFor возвращает описание тарифа. Неизвестный тариф трактуется как FREE.
func PlanFor(t PlanType) Plan {
	for _, p := range plans {
		if p.Type == t {
			return p
		}
	}
	return plans[0]
}
