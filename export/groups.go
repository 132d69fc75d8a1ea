package export

import (
	"context"
	"maps"
	"slices"

	"go.uber.org/zap"

	"github.com/setanarut/iconcomposer/batch"
)

// addGroupData files obj under its item group and subgroup, creating both
// on first sight, and replaces obj's group and subgroup objects by their
// names. list is "items" or "recipes".
func (p *Processor) addGroupData(obj Record, list string) {
	group, subgroup := obj.Rec("group"), obj.Rec("subgroup")
	if group == nil || subgroup == nil {
		return
	}
	groupName, subgroupName := group.Str("name"), subgroup.Str("name")

	stored := p.out.Groups[groupName]
	if stored == nil {
		stored = group
		stored["subgroups"] = make(map[string]any)
		p.out.Groups[groupName] = stored
	}
	subgroups := stored.Rec("subgroups")
	sub := Record(nil)
	if s, ok := subgroups[subgroupName]; ok {
		sub, _ = s.(Record)
	}
	if sub == nil {
		sub = subgroup
		sub["items"] = []string{}
		sub["recipes"] = []string{}
		subgroups[subgroupName] = sub
	}
	names, _ := sub[list].([]string)
	sub[list] = append(names, obj.Str("name"))

	obj["group"] = groupName
	obj["subgroup"] = subgroupName
}

// groups localises the groups collected from items and recipes and renders
// their icons. Groups and subgroups that nothing was filed under are only
// reported.
func (p *Processor) groups(ctx context.Context) error {
	empty := make(map[string]bool)
	var jobs []batch.Job
	var owners []Record
	rawGroups := p.raw["item-group"]
	for _, key := range slices.Sorted(maps.Keys(rawGroups)) {
		group := p.out.Groups[key]
		if group == nil {
			empty[key] = true
			p.Logger.Warn("empty item-group", zap.String("group", key))
			continue
		}
		p.localise(group)
		if spec, ok := p.spec("item-group", key, true); ok {
			group["orig_icon"] = origIcon(rawGroups[key])
			jobs = append(jobs, batch.Job{File: "group-" + key + ".png", Spec: spec})
			owners = append(owners, group)
		}
	}

	rawSubgroups := p.raw["item-subgroup"]
	for _, key := range slices.Sorted(maps.Keys(rawSubgroups)) {
		parentName := rawSubgroups[key].Str("group")
		parent := p.out.Groups[parentName]
		if parent == nil {
			if !empty[parentName] {
				p.Logger.Warn("item-subgroup with unknown parent",
					zap.String("subgroup", key),
					zap.String("group", parentName))
			}
			continue
		}
		sub, _ := parent.Rec("subgroups")[key].(Record)
		if sub == nil {
			p.Logger.Warn("empty item-subgroup", zap.String("subgroup", key), zap.String("group", parentName))
			continue
		}
		p.localise(sub)
	}
	return p.render(ctx, "groups", jobs, owners)
}

// origIcon returns the icon reference of a raw prototype as it was before
// rendering: its icon path, or its icons list when it has no single icon.
func origIcon(raw Record) any {
	if icon, ok := raw["icon"]; ok {
		return icon
	}
	return raw["icons"]
}
