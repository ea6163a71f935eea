package tasks

import (
	"sort"
	"strings"
)

// SortKeys lists the supported sort orders for task lists, in the order
// they are documented.
var SortKeys = []string{"createdAt", "updatedAt", "dueDate", "priority", "title", "status"}

// ValidSortKey reports whether key names a supported sort order.
func ValidSortKey(key string) bool {
	for _, k := range SortKeys {
		if k == key {
			return true
		}
	}
	return false
}

var priorityRank = map[Priority]int{
	PriorityHigh:   0,
	PriorityMedium: 1,
	PriorityLow:    2,
}

var statusRank = map[Status]int{
	StatusTodo:       0,
	StatusInProgress: 1,
	StatusCompleted:  2,
}

// Sort orders list in place. createdAt and title sort ascending, updatedAt
// sorts most recently touched first, dueDate sorts soonest first with
// undated tasks last, priority sorts HIGH first, and status follows the
// lifecycle order. Unknown keys leave the stored order untouched. The sort
// is stable, so ties keep their relative order.
func Sort(list []Task, key string) {
	switch key {
	case "createdAt":
		sort.SliceStable(list, func(i, j int) bool {
			return list[i].CreatedAt.Before(list[j].CreatedAt)
		})
	case "updatedAt":
		sort.SliceStable(list, func(i, j int) bool {
			return list[i].UpdatedAt.After(list[j].UpdatedAt)
		})
	case "dueDate":
		sort.SliceStable(list, func(i, j int) bool {
			a, b := list[i].DueDate, list[j].DueDate
			if a == nil {
				return false
			}
			if b == nil {
				return true
			}
			return a.Before(*b)
		})
	case "priority":
		sort.SliceStable(list, func(i, j int) bool {
			return priorityRank[list[i].Priority] < priorityRank[list[j].Priority]
		})
	case "title":
		sort.SliceStable(list, func(i, j int) bool {
			return strings.ToLower(list[i].Title) < strings.ToLower(list[j].Title)
		})
	case "status":
		sort.SliceStable(list, func(i, j int) bool {
			return statusRank[list[i].Status] < statusRank[list[j].Status]
		})
	}
}
