// Package main содержит утилиту ручной проверки напоминаний для одного
// пользователя. Прогоняет тот же конвейер перемотки дат и проверки
// срабатывания, что и планировщик, печатает трассировку по каждой подписке
// и по флагу отправляет реальный push. Историю отправок не изменяет.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/JerryyrreJ/subscription-management-sub000/internal/config"
	"github.com/JerryyrreJ/subscription-management-sub000/internal/lib/period"
	"github.com/JerryyrreJ/subscription-management-sub000/internal/lib/renewal"
	"github.com/JerryyrreJ/subscription-management-sub000/internal/lib/sl"
	"github.com/JerryyrreJ/subscription-management-sub000/internal/pushclient"
	"github.com/JerryyrreJ/subscription-management-sub000/internal/storage/repository"
)

func main() {
	username := flag.String("user", "", "username to trace")
	dispatch := flag.Bool("dispatch", false, "actually send eligible pushes")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))

	if *username == "" {
		logger.Error("-user is required")
		flag.Usage()
		os.Exit(2)
	}

	cfg := config.MustLoad()
	ctx := context.Background()

	db, err := repository.New(cfg.StorageConnectionString)
	if err != nil {
		logger.Error("failed to connect storage", sl.Err(err))
		os.Exit(1)
	}
	defer func() {
		_ = db.DB.Close()
	}()

	settings, err := db.GetNotificationSettings(ctx, *username)
	if err != nil {
		logger.Error("failed to get notification settings", sl.Err(err))
		os.Exit(1)
	}
	subs, err := db.ListNotifiableSubscriptions(ctx, *username)
	if err != nil {
		logger.Error("failed to list subscriptions", sl.Err(err))
		os.Exit(1)
	}

	today := time.Now().UTC()
	pusher := pushclient.New(cfg.PushTimeout)

	fmt.Printf("user=%s enabled=%t days_before=%d subscriptions=%d today=%s\n",
		*username, settings.Enabled, settings.DaysBefore, len(subs), today.Format(time.DateOnly))

	var fatal bool
	for _, sub := range subs {
		p, err := period.Parse(sub.Period, sub.CustomDays)
		if err != nil {
			fmt.Printf("  %-20s ERROR invalid period: %v\n", sub.Name, err)
			fatal = true
			continue
		}

		last, next, err := renewal.Resolve(sub.LastPaymentDate, sub.NextPaymentDate, p, today)
		if err != nil {
			fmt.Printf("  %-20s ERROR resolve failed: %v\n", sub.Name, err)
			fatal = true
			continue
		}
		rolled := !next.Equal(renewal.DateOnly(sub.NextPaymentDate))
		sub.LastPaymentDate = last
		sub.NextPaymentDate = next

		ok, reason := renewal.ShouldNotify(sub, settings, today)
		fmt.Printf("  %-20s next=%s days_until=%d rolled_forward=%t notify=%t reason=%s\n",
			sub.Name, next.Format(time.DateOnly), renewal.DaysUntil(next, today), rolled, ok, reason)

		if ok && *dispatch {
			daysUntil := renewal.DaysUntil(next, today)
			plural := "s"
			if daysUntil == 1 {
				plural = ""
			}
			body := fmt.Sprintf("%s expires in %d day%s\n%.2f %s/%s",
				sub.Name, daysUntil, plural, sub.Amount, sub.Currency, p.Noun())

			pushCtx, cancel := context.WithTimeout(ctx, cfg.PushTimeout)
			err := pusher.Push(pushCtx, settings.ServerURL, settings.DeviceKey,
				"Subscription Management", body, pushclient.Options{Group: "subscriptions"})
			cancel()
			if err != nil {
				fmt.Printf("  %-20s ERROR push failed: %v\n", sub.Name, err)
				fatal = true
				continue
			}
			fmt.Printf("  %-20s push delivered\n", sub.Name)
		}
	}

	if fatal {
		os.Exit(1)
	}
}
