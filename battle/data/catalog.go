package data

import (
	"battlecore/battle/components"
)

// JSONEffectDef mirrors components.EffectDef but keeps Kind as a string
// until Resolve parses it, the same pointer-vs-value split
// datareader.JSONMonster uses for optional armor/weapon blocks.
type JSONEffectDef struct {
	Kind        string            `json:"kind"`
	Calculation string            `json:"calculation"`
	Params      map[string]string `json:"params"`
}

func (d JSONEffectDef) Resolve() (components.EffectDef, error) {
	kind, err := ParseEffectKind(d.Kind)
	if err != nil {
		return components.EffectDef{}, err
	}
	return components.EffectDef{Kind: kind, Calculation: d.Calculation, Params: d.Params}, nil
}

// JSONPart is one entry of partcatalog.json: the static definition of a
// part that can be equipped at a given key, independent of any one
// combatant instance.
type JSONPart struct {
	ID                string          `json:"id"`
	Key               string          `json:"key"`
	MaxHP             int             `json:"maxHp"`
	Might             int             `json:"might"`
	Success           int             `json:"success"`
	Armor             int             `json:"armor"`
	Mobility          int             `json:"mobility"`
	Propulsion        int             `json:"propulsion"`
	Stability         int             `json:"stability"`
	Defense           int             `json:"defense"`
	LogicType         string          `json:"logicType"`
	IsSupport         bool            `json:"isSupport"`
	TargetTiming      string          `json:"targetTiming"`
	TargetScope       string          `json:"targetScope"`
	AutoStrategy      string          `json:"autoStrategy"`
	AccuracyType      string          `json:"accuracyType"`
	Effects           []JSONEffectDef `json:"effects"`
	HasPenetrate      bool            `json:"hasPenetrate"`
	HasCriticalBonus  bool            `json:"hasCriticalBonus"`
	CriticalBonusRate float64         `json:"criticalBonusRate"`
	HasGuard          bool            `json:"hasGuard"`
	GuardCount        int             `json:"guardCount"`

	DeclarationMessageKey string `json:"declarationMessageKey"`
	ImpactMessageKey      string `json:"impactMessageKey"`
	AnimationKind         string `json:"animationKind"`
	ImpactClassName       string `json:"impactClassName"`
}

// Resolve turns a JSONPart into the components.PartSpec the ECS factory
// consumes, parsing every enum field once up front so later lookups
// never re-parse strings mid-battle.
func (p JSONPart) Resolve() (components.PartSpec, error) {
	key, err := ParsePartKey(p.Key)
	if err != nil {
		return components.PartSpec{}, err
	}
	logicType, err := ParseActionLogicType(p.LogicType)
	if err != nil {
		return components.PartSpec{}, err
	}
	timing, err := ParseTargetTiming(p.TargetTiming)
	if err != nil {
		return components.PartSpec{}, err
	}
	scope, err := ParseTargetScope(p.TargetScope)
	if err != nil {
		return components.PartSpec{}, err
	}
	accuracy, err := ParseAccuracyType(p.AccuracyType)
	if err != nil {
		return components.PartSpec{}, err
	}

	effects := make([]components.EffectDef, 0, len(p.Effects))
	for _, e := range p.Effects {
		resolved, err := e.Resolve()
		if err != nil {
			return components.PartSpec{}, err
		}
		effects = append(effects, resolved)
	}

	return components.PartSpec{
		Key:   key,
		MaxHP: p.MaxHP,
		Stats: components.PartStats{
			Might: p.Might, Success: p.Success, Armor: p.Armor,
			Mobility: p.Mobility, Propulsion: p.Propulsion,
			Stability: p.Stability, Defense: p.Defense,
		},
		Logic:     components.ActionLogic{Type: logicType, IsSupport: p.IsSupport},
		Targeting: components.TargetingBehavior{Timing: timing, Scope: scope, AutoStrategy: p.AutoStrategy},
		Accuracy:  components.AccuracyBehavior{Type: accuracy},
		Impact:    components.ImpactBehavior{Effects: effects},
		Visual: components.PartVisualConfig{
			DeclarationMessageKey: p.DeclarationMessageKey,
			ImpactMessageKey:      p.ImpactMessageKey,
			AnimationKind:         p.AnimationKind,
			ImpactClassName:       p.ImpactClassName,
		},
		HasPenetrate:      p.HasPenetrate,
		HasCriticalBonus:  p.HasCriticalBonus,
		CriticalBonusRate: p.CriticalBonusRate,
		HasGuard:          p.HasGuard,
		GuardCount:        p.GuardCount,
	}, nil
}

// JSONMedal is one entry of medalcatalog.json: a combatant archetype
// (base stats, speed, AI personality) independent of its equipped parts.
type JSONMedal struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Personality string  `json:"personality"`
	BaseSpeed   float64 `json:"baseSpeed"`
	GaugeMax    float64 `json:"gaugeMax"`
	Color       string  `json:"color"`
}

// JSONMessageTemplate is one entry of messagecatalog.json: a display
// string keyed by the message keys PartVisualConfig and CancelReason
// reference, with positional placeholders such as {0}. MessageCatalog
// returns the template unfilled; battle/tasks only passes the key and
// its Params on in a DialogRequest.
type JSONMessageTemplate struct {
	Key     string `json:"key"`
	Format  string `json:"format"`
}

// PartCatalog indexes JSONPart entries by ID after resolution.
type PartCatalog struct {
	ByID map[string]components.PartSpec
}

func (c *PartCatalog) Get(id string) (components.PartSpec, bool) {
	spec, ok := c.ByID[id]
	return spec, ok
}

// MedalCatalog indexes JSONMedal entries by ID.
type MedalCatalog struct {
	ByID map[string]JSONMedal
}

func (c *MedalCatalog) Get(id string) (JSONMedal, bool) {
	m, ok := c.ByID[id]
	return m, ok
}

// MessageCatalog indexes message templates by key.
type MessageCatalog struct {
	ByKey map[string]string
}

// Format looks up key and returns its template, or the key itself
// (bracketed) if missing -- a missing message key should never crash a
// running battle, only be conspicuous in the log.
func (c *MessageCatalog) Format(key string) string {
	if tmpl, ok := c.ByKey[key]; ok {
		return tmpl
	}
	return "[[" + key + "]]"
}
