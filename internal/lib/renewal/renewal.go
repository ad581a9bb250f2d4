// Package renewal содержит чистую логику автопродления подписок:
// перемотку устаревших дат платежей до ближайшей реальной даты продления
// и решение, нужно ли сегодня отправлять напоминание.
//
// Раньше эта логика жила в трёх местах (веб-слой, фоновый планировщик,
// проверочный скрипт) и постепенно расходилась; теперь все три потребителя
// вызывают один и тот же пакет. Текущая дата всегда передаётся параметром,
// функции не читают системные часы.
package renewal

import (
	"fmt"
	"time"

	"github.com/JerryyrreJ/subscription-management-sub000/internal/lib/period"
	"github.com/JerryyrreJ/subscription-management-sub000/internal/models"
)

// maxResolveIterations ограничивает перемотку дат. Корректный период всегда
// двигает дату строго вперёд, так что лимит срабатывает только на испорченных
// данных хранилища и превращает потенциальный вечный цикл в ошибку.
const maxResolveIterations = 4096

// ReminderWindowDays — верхняя граница окна напоминаний. Подписки, до продления
// которых больше 14 дней, не рассматриваются независимо от настроек.
const ReminderWindowDays = 14

// ErrResolveLimit возвращается, когда перемотка дат не сошлась за разумное
// число шагов — признак испорченной записи, а не повод зависнуть.
var ErrResolveLimit = fmt.Errorf("payment date resolution did not converge")

// Reason объясняет, почему напоминание не отправляется (или отправляется).
// Используется только для логов и трассировки, наружу не отдаётся.
type Reason string

const (
	// ReasonEligible — напоминание нужно отправить.
	ReasonEligible Reason = "eligible"
	// ReasonDisabled — напоминания выключены подпиской или настройками пользователя.
	ReasonDisabled Reason = "notifications disabled"
	// ReasonOutsideWindow — до продления больше 14 дней либо дата уже в прошлом.
	ReasonOutsideWindow Reason = "outside reminder window"
	// ReasonNotTriggerDay — дней до продления не ровно столько, сколько настроено.
	ReasonNotTriggerDay Reason = "not the configured reminder day"
	// ReasonAlreadySent — сегодня по этой подписке уже была успешная отправка.
	ReasonAlreadySent Reason = "already sent today"
)

// DateOnly отбрасывает компонент времени, оставляя календарную дату в UTC.
// Все сравнения дат в пакете делаются на таких значениях, чтобы исключить
// ошибки на один день из-за часовых поясов и времени суток.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DaysUntil возвращает число календарных дней от today до target.
// Отрицательное значение означает просроченную дату.
func DaysUntil(target, today time.Time) int {
	return int(DateOnly(target).Sub(DateOnly(today)).Hours() / 24)
}

// Resolve перематывает пару дат платежа вперёд до первой даты продления,
// которая наступает сегодня или позже.
//
// Если nextPayment уже не в прошлом, входные даты возвращаются без изменений:
// функция идемпотентна и её можно вызывать на собственном результате сколько
// угодно раз. Иначе даты шагают по правилу периода: прошлая дата продления
// становится датой последнего списания. Запись результата в хранилище —
// ответственность вызывающего, сама функция чистая.
func Resolve(lastPayment, nextPayment time.Time, p period.Period, today time.Time) (time.Time, time.Time, error) {
	const op = "renewal.Resolve"

	last := DateOnly(lastPayment)
	next := DateOnly(nextPayment)
	day := DateOnly(today)

	if !next.Before(day) {
		return last, next, nil
	}

	for i := 0; i < maxResolveIterations; i++ {
		advanced, err := period.Advance(next, p)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("%s: %w", op, err)
		}
		last = next
		next = DateOnly(advanced)
		if !next.Before(day) {
			return last, next, nil
		}
	}
	return time.Time{}, time.Time{}, fmt.Errorf("%s: %w", op, ErrResolveLimit)
}

// ShouldNotify решает, нужно ли сегодня напомнить о продлении подписки.
//
// Ожидает уже перемотанную (не устаревшую) дату NextPaymentDate. Напоминание
// срабатывает ровно в день, когда дней до продления остаётся DaysBefore —
// не «столько или меньше». Пропущенный день не навёрстывается: так ведёт себя
// продукт, и менять это без решения владельца нельзя. Функция не изменяет
// историю отправок; записать отправку должен вызывающий, и только после
// подтверждённой доставки.
func ShouldNotify(sub *models.Subscription, settings *models.NotificationSettings, today time.Time) (bool, Reason) {
	if !sub.NotificationEnabled || !settings.Enabled {
		return false, ReasonDisabled
	}

	daysUntil := DaysUntil(sub.NextPaymentDate, today)
	if daysUntil < 0 || daysUntil > ReminderWindowDays {
		return false, ReasonOutsideWindow
	}
	if daysUntil != settings.DaysBefore {
		return false, ReasonNotTriggerDay
	}
	if settings.SentOn(sub.ID, today) {
		return false, ReasonAlreadySent
	}
	return true, ReasonEligible
}
