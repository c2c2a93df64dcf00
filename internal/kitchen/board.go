package kitchen

import (
	"sort"

	"github.com/pedinu/api/internal/database"
	"github.com/pedinu/api/internal/textfold"
)

type Column struct {
	Stage  Stage       `json:"stage"`
	Orders []OrderView `json:"orders"`
}

// BoardView is the grouped board. Cancelled orders never appear in a live
// column.
type BoardView struct {
	Columns   []Column    `json:"columns"`
	Cancelled []OrderView `json:"cancelled"`
}

// Board groups orders by stage, newest first. A non-empty query keeps only
// orders whose id or customer name contains it, ignoring case and accents.
// Orders with an unknown status are dropped.
func Board(orders []database.KitchenOrder, query string) BoardView {
	byStatus := make(map[database.KitchenOrderStatus][]database.KitchenOrder)
	for _, o := range orders {
		if !matchesQuery(o, query) {
			continue
		}
		if _, ok := StageFor(o.Status); !ok {
			continue
		}
		byStatus[o.Status] = append(byStatus[o.Status], o)
	}

	view := BoardView{
		Columns:   make([]Column, 0, len(Stages)),
		Cancelled: newestFirst(byStatus[database.KitchenOrderStatusCancelled]),
	}
	for _, s := range Stages {
		view.Columns = append(view.Columns, Column{
			Stage:  s,
			Orders: newestFirst(byStatus[s.Status]),
		})
	}
	return view
}

func matchesQuery(o database.KitchenOrder, query string) bool {
	return textfold.Contains(o.ID.String(), query) || textfold.Contains(o.CustomerName, query)
}

func newestFirst(orders []database.KitchenOrder) []OrderView {
	sort.SliceStable(orders, func(i, j int) bool {
		return orders[i].OrderTime.After(orders[j].OrderTime)
	})
	views := make([]OrderView, 0, len(orders))
	for _, o := range orders {
		views = append(views, NewView(o))
	}
	return views
}
