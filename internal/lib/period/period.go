// Package period реализует арифметику периодов продления подписки.
//
// Advance вычисляет следующую дату списания по правилу периода: ровно один
// календарный месяц, ровно один календарный год или ровно N дней. Функции
// пакета чистые: никогда не обращаются к текущему времени и не имеют побочных
// эффектов, поэтому одинаково используются и веб-слоем, и фоновым планировщиком.
package period

import (
	"fmt"
	"time"
)

// Unit перечисляет поддерживаемые виды периода продления.
type Unit string

const (
	// Monthly — продление раз в календарный месяц.
	Monthly Unit = "monthly"
	// Yearly — продление раз в календарный год.
	Yearly Unit = "yearly"
	// Custom — продление раз в заданное число дней.
	Custom Unit = "custom"
)

// Period описывает правило продления подписки.
// Days имеет смысл только для Unit == Custom и обязан быть положительным.
type Period struct {
	Unit Unit
	Days int
}

// ErrInvalidPeriod возвращается для неизвестного вида периода
// или custom-периода с неположительным числом дней. Такой период нельзя
// пропускать дальше: нулевой шаг зациклил бы перемотку дат.
var ErrInvalidPeriod = fmt.Errorf("invalid subscription period")

// Parse собирает Period из сырых значений хранилища или запроса.
func Parse(unit string, customDays int) (Period, error) {
	const op = "period.Parse"
	switch Unit(unit) {
	case Monthly:
		return Period{Unit: Monthly}, nil
	case Yearly:
		return Period{Unit: Yearly}, nil
	case Custom:
		if customDays <= 0 {
			return Period{}, fmt.Errorf("%s: custom period of %d days: %w", op, customDays, ErrInvalidPeriod)
		}
		return Period{Unit: Custom, Days: customDays}, nil
	default:
		return Period{}, fmt.Errorf("%s: unit %q: %w", op, unit, ErrInvalidPeriod)
	}
}

// Advance возвращает дату, следующую за date по правилу периода.
//
// Для месячного и годового периода число месяца сохраняется; если в целевом
// месяце такого числа нет (31-е, 29 февраля), дата прижимается к последнему
// дню целевого месяца. Правило одно и применяется единообразно.
func Advance(date time.Time, p Period) (time.Time, error) {
	const op = "period.Advance"
	switch p.Unit {
	case Monthly:
		return addMonthsClamped(date, 1), nil
	case Yearly:
		return addMonthsClamped(date, 12), nil
	case Custom:
		if p.Days <= 0 {
			return time.Time{}, fmt.Errorf("%s: custom period of %d days: %w", op, p.Days, ErrInvalidPeriod)
		}
		return date.AddDate(0, 0, p.Days), nil
	default:
		return time.Time{}, fmt.Errorf("%s: unit %q: %w", op, p.Unit, ErrInvalidPeriod)
	}
}

// Noun возвращает знаменатель для текста уведомления: "month", "year"
// или сырую метку периода для custom.
func (p Period) Noun() string {
	switch p.Unit {
	case Monthly:
		return "month"
	case Yearly:
		return "year"
	default:
		return string(p.Unit)
	}
}

// addMonthsClamped сдвигает дату на months месяцев вперёд, прижимая число
// к последнему дню целевого месяца вместо перелива в следующий
// (time.AddDate превратил бы 31 января в 2-3 марта).
func addMonthsClamped(date time.Time, months int) time.Time {
	year, month, day := date.Date()
	target := time.Date(year, month+time.Month(months), 1, 0, 0, 0, 0, date.Location())
	if last := daysIn(target.Year(), target.Month()); day > last {
		day = last
	}
	return time.Date(target.Year(), target.Month(), day, 0, 0, 0, 0, date.Location())
}

// daysIn возвращает число дней в месяце: нулевой день следующего месяца.
func daysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
