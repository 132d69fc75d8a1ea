package export

import (
	"context"
	"encoding/json"
	"fmt"
	"maps"
	"slices"

	"go.uber.org/zap"

	"github.com/setanarut/iconcomposer"
	"github.com/setanarut/iconcomposer/batch"
)

// Localizer resolves localised-string references. *locale.Table
// implements it.
type Localizer interface {
	Lookup(ref any) (string, bool)
}

// Output is the exported document. Icon fields hold file names relative
// to the icon directory.
type Output struct {
	Items    map[string]Record            `json:"items"`
	Fluids   map[string]Record            `json:"fluids"`
	Recipes  map[string]Record            `json:"recipes"`
	Entities map[string]map[string]Record `json:"entities"`
	Groups   map[string]Record            `json:"groups"`
}

var fuelKeys = []string{
	"fuel_category",
	"fuel_value",
	"fuel_acceleration_multiplier",
	"fuel_top_speed_multiplier",
	"fuel_emissions_multiplier",
}

// Processor localises the dump and renders one icon per record through
// Runner. A Processor is used for a single Process call.
type Processor struct {
	Locale Localizer
	Runner *batch.Runner
	Logger *zap.Logger

	raw map[string]map[string]Record
	out *Output
}

// Process mutates the records of d in place and returns them as Output.
// Icons that fail to render are logged and left out; only cancellation of
// ctx aborts processing.
func (p *Processor) Process(ctx context.Context, d *Dump) (*Output, error) {
	if p.Logger == nil {
		p.Logger = zap.NewNop()
	}
	p.raw = d.Raw
	p.out = &Output{
		Items:    orEmpty(d.Items),
		Fluids:   orEmpty(d.Fluids),
		Recipes:  orEmpty(d.Recipes),
		Entities: d.Entities,
		Groups:   make(map[string]Record),
	}
	if p.out.Entities == nil {
		p.out.Entities = make(map[string]map[string]Record)
	}

	for _, step := range []func(context.Context) error{
		func(ctx context.Context) error { return p.items(ctx, "item", p.out.Items) },
		func(ctx context.Context) error { return p.items(ctx, "fluid", p.out.Fluids) },
		p.recipes,
		p.entities,
		p.groups,
	} {
		if err := step(ctx); err != nil {
			return nil, err
		}
	}
	return p.out, nil
}

func (p *Processor) items(ctx context.Context, baseType string, records map[string]Record) error {
	keys := slices.Sorted(maps.Keys(records))
	jobs := make([]batch.Job, 0, len(keys))
	owners := make([]Record, 0, len(keys))
	for _, key := range keys {
		item := records[key]
		if item.Str("type") == "" {
			item["type"] = baseType
		}
		p.localise(item)
		if spec, ok := p.spec(item.Str("type"), key, true); ok {
			jobs = append(jobs, batch.Job{File: fmt.Sprintf("%s-%s.png", baseType, item.Str("name")), Spec: spec})
			owners = append(owners, item)
		}
		p.addGroupData(item, "items")
		if baseType == "item" {
			groupFuel(item)
		}
	}
	return p.render(ctx, baseType+"s", jobs, owners)
}

// groupFuel moves the fuel fields of an item under "fuel", dropping them
// entirely for items that are not fuel.
func groupFuel(item Record) {
	if cat, _ := item["fuel_category"].(string); cat != "" {
		fuel := make(Record, len(fuelKeys))
		for _, k := range fuelKeys {
			fuel[k] = item[k]
		}
		item["fuel"] = fuel
	}
	for _, k := range fuelKeys {
		delete(item, k)
	}
}

func (p *Processor) recipes(ctx context.Context) error {
	keys := slices.Sorted(maps.Keys(p.out.Recipes))
	var jobs []batch.Job
	var owners []Record
	for _, key := range keys {
		recipe := p.out.Recipes[key]
		p.localise(recipe)
		if spec, ok := p.spec("recipe", key, false); ok {
			jobs = append(jobs, batch.Job{File: "recipe-" + recipe.Str("name") + ".png", Spec: spec})
			owners = append(owners, recipe)
		}
	}
	if err := p.render(ctx, "recipes", jobs, owners); err != nil {
		return err
	}
	for _, key := range keys {
		recipe := p.out.Recipes[key]
		if recipe.Str("icon") == "" {
			p.fallbackIcon(recipe)
		}
		p.addGroupData(recipe, "recipes")
	}
	return nil
}

// fallbackIcon gives an icon-less recipe the icon of its main product, or
// of its first product when there is no main product.
func (p *Processor) fallbackIcon(recipe Record) {
	product := recipe.Rec("main_product")
	if product == nil {
		if products, _ := recipe["products"].([]any); len(products) > 0 {
			product, _ = products[0].(map[string]any)
		}
	}
	if product == nil {
		p.Logger.Warn("recipe without icon or products", zap.String("recipe", recipe.Str("name")))
		return
	}
	var from map[string]Record
	switch product.Str("type") {
	case "fluid":
		from = p.out.Fluids
	default:
		from = p.out.Items
	}
	src := from[product.Str("name")]
	if src == nil || src.Str("icon") == "" {
		p.Logger.Warn("recipe fallback icon missing",
			zap.String("recipe", recipe.Str("name")),
			zap.String("product", product.Str("name")))
		return
	}
	recipe["icon"] = src["icon"]
	if c, ok := src["icon_color"]; ok {
		recipe["icon_color"] = c
	}
}

func (p *Processor) entities(ctx context.Context) error {
	var jobs []batch.Job
	var owners []Record
	for _, typ := range slices.Sorted(maps.Keys(p.out.Entities)) {
		byName := p.out.Entities[typ]
		for _, key := range slices.Sorted(maps.Keys(byName)) {
			entity := byName[key]
			p.localise(entity)
			rawType := entity.Str("type")
			if rawType == "" {
				rawType = typ
			}
			if spec, ok := p.spec(rawType, key, false); ok {
				jobs = append(jobs, batch.Job{File: "entity-" + entity.Str("name") + ".png", Spec: spec})
				owners = append(owners, entity)
			}
		}
	}
	return p.render(ctx, "entities", jobs, owners)
}

// localise replaces the localised name and description references by
// text. Only a missing name is worth a warning.
func (p *Processor) localise(r Record) {
	if p.Locale == nil {
		return
	}
	if ref, ok := r["localised_name"]; ok {
		s, found := p.Locale.Lookup(ref)
		if !found {
			p.Logger.Warn("unresolved localised name", zap.String("name", r.Str("name")), zap.Any("ref", ref))
		}
		r["localised_name"] = s
	}
	if ref, ok := r["localised_description"]; ok {
		r["localised_description"], _ = p.Locale.Lookup(ref)
	}
}

// spec extracts the icon specification of data.raw[typ][name]. Prototypes
// without an icon are reported only when warn is set.
func (p *Processor) spec(typ, name string, warn bool) (iconcomposer.IconSpec, bool) {
	raw := p.raw[typ][name]
	if raw == nil {
		p.Logger.Warn("prototype missing from data.raw", zap.String("type", typ), zap.String("name", name))
		return iconcomposer.IconSpec{}, false
	}
	spec, err := SpecFromRecord(raw)
	if err != nil {
		p.Logger.Warn("bad icon specification", zap.String("type", typ), zap.String("name", name), zap.Error(err))
		return iconcomposer.IconSpec{}, false
	}
	if spec.Icon == "" && !spec.Layered() {
		if warn {
			p.Logger.Warn("no icon or icons found", zap.String("type", typ), zap.String("name", name))
		}
		return iconcomposer.IconSpec{}, false
	}
	if spec.Name == "" {
		spec.Name = name
	}
	return spec, true
}

// SpecFromRecord decodes the icon fields of a prototype.
func SpecFromRecord(r Record) (iconcomposer.IconSpec, error) {
	var spec iconcomposer.IconSpec
	data, err := json.Marshal(r)
	if err != nil {
		return spec, err
	}
	err = json.Unmarshal(data, &spec)
	return spec, err
}

// render runs jobs and stores the file name and dominant colour of every
// rendered icon on the matching owner record.
func (p *Processor) render(ctx context.Context, phase string, jobs []batch.Job, owners []Record) error {
	out, err := p.Runner.Run(ctx, phase, jobs)
	if err != nil {
		return err
	}
	for i, o := range out {
		if o.Err != nil {
			continue
		}
		owners[i]["icon"] = o.File
		if o.Color != "" {
			owners[i]["icon_color"] = o.Color
		}
	}
	return nil
}

func orEmpty(m map[string]Record) map[string]Record {
	if m == nil {
		return make(map[string]Record)
	}
	return m
}
