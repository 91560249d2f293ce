package pyversion

import "sort"

// Group 同一 major.minor 下的版本集合
type Group struct {
	Key      string // 例如 3.11
	Major    int
	Minor    int
	Versions []Version // 降序
}

// GroupByMinor 按前两段分组；组内降序，组间按 (major, minor) 降序
func GroupByMinor(versions []Version) []Group {
	index := make(map[[2]int]int)
	groups := make([]Group, 0)

	for _, v := range Unique(versions) {
		key := [2]int{v.Major, v.Minor}
		i, ok := index[key]
		if !ok {
			i = len(groups)
			index[key] = i
			groups = append(groups, Group{Key: v.MajorMinor(), Major: v.Major, Minor: v.Minor})
		}
		groups[i].Versions = append(groups[i].Versions, v)
	}

	for i := range groups {
		SortDesc(groups[i].Versions)
	}

	sort.SliceStable(groups, func(a, b int) bool {
		if groups[a].Major != groups[b].Major {
			return groups[a].Major > groups[b].Major
		}
		return groups[a].Minor > groups[b].Minor
	})

	return groups
}
