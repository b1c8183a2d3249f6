package trip

import (
	"strings"

	"example.com/trip-dashboard/backend/internal/models"
)

// Action описывает переход состояния поездки. apply не меняет исходный снимок и
// сообщает, изменилось ли состояние.
type Action interface {
	apply(State) (State, bool)
}

// Reduce применяет действие к снимку и возвращает новый снимок.
func Reduce(s State, action Action) (State, bool) {
	if action == nil {
		return s, false
	}
	return action.apply(s)
}

type SetLocation struct {
	Location string
}

func (a SetLocation) apply(s State) (State, bool) {
	location := strings.TrimSpace(a.Location)
	if location == s.Trip.Location {
		return s, false
	}
	s.Trip.Location = location
	return s, true
}

type SetDays struct {
	Days int
}

func (a SetDays) apply(s State) (State, bool) {
	days := a.Days
	if days < 1 {
		days = 1
	}
	if days == s.Trip.Days {
		return s, false
	}
	s.Trip.Days = days
	s.Activities = clampActivityDays(s)
	return s, true
}

type SetBudget struct {
	Budget float64
}

func (a SetBudget) apply(s State) (State, bool) {
	if a.Budget == s.Trip.Budget {
		return s, false
	}
	s.Trip.Budget = a.Budget
	return s, true
}

type SetPlanned struct {
	Planned bool
}

func (a SetPlanned) apply(s State) (State, bool) {
	if a.Planned == s.Trip.Planned {
		return s, false
	}
	s.Trip.Planned = a.Planned
	return s, true
}

type SetPreferredTransport struct {
	Transport models.Transport
}

func (a SetPreferredTransport) apply(s State) (State, bool) {
	transport := CoerceTransport(string(a.Transport))
	if transport == s.Trip.PreferredTransport {
		return s, false
	}
	s.Trip.PreferredTransport = transport
	return s, true
}

type AddMember struct {
	Member models.Member
}

func (a AddMember) apply(s State) (State, bool) {
	if a.Member.ID == "" || indexOfMember(s.Members, a.Member.ID) >= 0 {
		return s, false
	}
	members := make([]models.Member, 0, len(s.Members)+1)
	members = append(members, s.Members...)
	s.Members = append(members, a.Member)
	return s, true
}

type RemoveMember struct {
	ID string
}

func (a RemoveMember) apply(s State) (State, bool) {
	idx := indexOfMember(s.Members, a.ID)
	if idx < 0 {
		return s, false
	}
	members := make([]models.Member, 0, len(s.Members)-1)
	members = append(members, s.Members[:idx]...)
	s.Members = append(members, s.Members[idx+1:]...)
	return s, true
}

type AddActivity struct {
	Activity models.Activity
}

func (a AddActivity) apply(s State) (State, bool) {
	if a.Activity.ID == "" || indexOfActivity(s.Activities, a.Activity.ID) >= 0 {
		return s, false
	}
	activity := a.Activity
	activity.Day = s.ClampDay(activity.Day)
	activity.Status = CoerceStatus(string(activity.Status))

	activities := make([]models.Activity, 0, len(s.Activities)+1)
	activities = append(activities, s.Activities...)
	s.Activities = append(activities, activity)
	return s, true
}

type RemoveActivity struct {
	ID string
}

func (a RemoveActivity) apply(s State) (State, bool) {
	idx := indexOfActivity(s.Activities, a.ID)
	if idx < 0 {
		return s, false
	}
	activities := make([]models.Activity, 0, len(s.Activities)-1)
	activities = append(activities, s.Activities[:idx]...)
	s.Activities = append(activities, s.Activities[idx+1:]...)
	return s, true
}

// AddExpense добавляет расход. Сумма приходит строкой и проверяется здесь:
// некорректная или отрицательная сумма, как и дата не в формате YYYY-MM-DD,
// оставляет снимок без изменений.
type AddExpense struct {
	ID       string
	Title    string
	Amount   string
	Category models.Category
	Date     string
}

func (a AddExpense) apply(s State) (State, bool) {
	amount, ok := ParseAmount(a.Amount)
	date, dateOK := ParseDate(a.Date)
	if !ok || !dateOK || a.ID == "" || indexOfExpense(s.Expenses, a.ID) >= 0 {
		return s, false
	}

	expense := models.Expense{
		ID:       a.ID,
		Title:    strings.TrimSpace(a.Title),
		Amount:   amount,
		Category: CoerceCategory(string(a.Category)),
		Date:     date,
	}

	expenses := make([]models.Expense, 0, len(s.Expenses)+1)
	expenses = append(expenses, s.Expenses...)
	s.Expenses = append(expenses, expense)
	return s, true
}

type RemoveExpense struct {
	ID string
}

func (a RemoveExpense) apply(s State) (State, bool) {
	idx := indexOfExpense(s.Expenses, a.ID)
	if idx < 0 {
		return s, false
	}
	expenses := make([]models.Expense, 0, len(s.Expenses)-1)
	expenses = append(expenses, s.Expenses[:idx]...)
	s.Expenses = append(expenses, s.Expenses[idx+1:]...)
	return s, true
}

// MergeSuggestions добавляет предложенные активности в день, пропуская уже
// существующие в этом дне по ключу название+место.
type MergeSuggestions struct {
	Day        int
	Activities []models.Activity
}

func (a MergeSuggestions) apply(s State) (State, bool) {
	day := s.ClampDay(a.Day)

	seen := make(map[string]struct{})
	for _, activity := range s.ActivitiesForDay(day) {
		seen[ActivityKey(activity.Title, activity.Location)] = struct{}{}
	}

	added := make([]models.Activity, 0, len(a.Activities))
	for _, activity := range a.Activities {
		key := ActivityKey(activity.Title, activity.Location)
		if _, ok := seen[key]; ok || activity.ID == "" || indexOfActivity(s.Activities, activity.ID) >= 0 {
			continue
		}
		seen[key] = struct{}{}

		activity.Day = day
		activity.Status = models.ActivityStatusPending
		activity.Suggested = true
		added = append(added, activity)
	}

	if len(added) == 0 {
		return s, false
	}

	activities := make([]models.Activity, 0, len(s.Activities)+len(added))
	activities = append(activities, s.Activities...)
	s.Activities = append(activities, added...)
	return s, true
}

type MarkAutoFilled struct {
	Key string
}

func (a MarkAutoFilled) apply(s State) (State, bool) {
	if a.Key == "" || containsString(s.AutoFilled, a.Key) {
		return s, false
	}
	keys := make([]string, 0, len(s.AutoFilled)+1)
	keys = append(keys, s.AutoFilled...)
	s.AutoFilled = append(keys, a.Key)
	return s, true
}

// AutoFill ставит защиту дня и добавляет предложения одним переходом.
// Если защита уже стоит или в дне есть активности пользователя, снимок не меняется.
type AutoFill struct {
	Destination string
	Day         int
	Activities  []models.Activity
}

func (a AutoFill) apply(s State) (State, bool) {
	day := s.ClampDay(a.Day)
	if s.IsAutoFilled(a.Destination, day) || s.HasUserActivities(day) {
		return s, false
	}

	s, _ = MarkAutoFilled{Key: AutoFillKey(a.Destination, day)}.apply(s)
	s, _ = MergeSuggestions{Day: day, Activities: a.Activities}.apply(s)
	return s, true
}

func clampActivityDays(s State) []models.Activity {
	activities := make([]models.Activity, len(s.Activities))
	for i, activity := range s.Activities {
		activity.Day = s.ClampDay(activity.Day)
		activities[i] = activity
	}
	return activities
}

func indexOfMember(members []models.Member, id string) int {
	for i, member := range members {
		if member.ID == id {
			return i
		}
	}
	return -1
}

func indexOfActivity(activities []models.Activity, id string) int {
	for i, activity := range activities {
		if activity.ID == id {
			return i
		}
	}
	return -1
}

func indexOfExpense(expenses []models.Expense, id string) int {
	for i, expense := range expenses {
		if expense.ID == id {
			return i
		}
	}
	return -1
}
