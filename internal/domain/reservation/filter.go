package reservation

import (
	"sort"
	"strings"
	"time"

	"travelbooking/internal/domain"
)

type Tab string

const (
	TabAll       Tab = "all"
	TabUpcoming  Tab = "upcoming"
	TabPast      Tab = "past"
	TabCancelled Tab = "cancelled"
)

func ParseTab(raw string) (Tab, bool) {
	switch Tab(strings.ToLower(strings.TrimSpace(raw))) {
	case "", TabAll:
		return TabAll, true
	case TabUpcoming:
		return TabUpcoming, true
	case TabPast:
		return TabPast, true
	case TabCancelled:
		return TabCancelled, true
	}
	return "", false
}

type SortOrder string

const (
	SortDeclared SortOrder = ""
	SortNewest   SortOrder = "newest"
	SortCheckIn  SortOrder = "check_in"
)

func ParseSortOrder(raw string) (SortOrder, bool) {
	switch SortOrder(strings.ToLower(strings.TrimSpace(raw))) {
	case SortDeclared:
		return SortDeclared, true
	case SortNewest:
		return SortNewest, true
	case SortCheckIn, "checkin":
		return SortCheckIn, true
	}
	return "", false
}

// Query narrows a merged list. An empty Type means all service types.
type Query struct {
	Type domain.ServiceType
	Tab  Tab
	Sort SortOrder
}

func (t Tab) matches(r domain.Reservation, now time.Time) bool {
	switch t {
	case TabUpcoming:
		return !r.Period.CheckIn.Before(now) && r.Status != domain.ReservationCancelled
	case TabPast:
		return r.CheckoutElapsed(now) || r.Status == domain.ReservationCompleted
	case TabCancelled:
		return r.Status == domain.ReservationCancelled
	default:
		return true
	}
}

// Filter applies the service-type filter, then the tab filter.
func Filter(items []domain.Reservation, q Query, now time.Time) []domain.Reservation {
	out := make([]domain.Reservation, 0, len(items))
	for _, r := range items {
		if q.Type != "" && r.ServiceType != q.Type {
			continue
		}
		if !q.Tab.matches(r, now) {
			continue
		}
		out = append(out, r)
	}
	sortReservations(out, q.Sort)
	return out
}

func sortReservations(items []domain.Reservation, order SortOrder) {
	switch order {
	case SortNewest:
		sort.SliceStable(items, func(i, j int) bool { return items[i].CreatedAt.After(items[j].CreatedAt) })
	case SortCheckIn:
		sort.SliceStable(items, func(i, j int) bool { return items[i].Period.CheckIn.Before(items[j].Period.CheckIn) })
	}
}
