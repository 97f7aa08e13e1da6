// bookctl runs the booking workflow from the command line: list the
// available slots for a date, or book one end to end.
//
//	bookctl -date 2026-09-07
//	bookctl -date 2026-09-07 -time 14:00 -name Ada -surname Lovelace -phone +905551112233
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"

	"randevu/internal/booking"
	appconfig "randevu/internal/config"
	"randevu/internal/schedule"
	"randevu/pkg/logging"
)

func main() {
	_ = godotenv.Load()
	cfg := appconfig.Load()

	var (
		dateFlag    = flag.String("date", "", "appointment date, YYYY-MM-DD (required)")
		timeFlag    = flag.String("time", "", "slot to book, HH:MM; omit to only list slots")
		nameFlag    = flag.String("name", "", "client given name")
		surnameFlag = flag.String("surname", "", "client family name")
		phoneFlag   = flag.String("phone", "", "client phone number")
		baseURL     = flag.String("base-url", cfg.ScheduleBaseURL, "scheduling backend base URL")
		psychID     = flag.String("psychologist", cfg.PsychologistID, "psychologist id")
		logLevel    = flag.String("log-level", "warn", "log level (debug|info|warn|error)")
	)
	flag.Parse()

	if *dateFlag == "" {
		flag.Usage()
		os.Exit(2)
	}
	date, err := schedule.ParseDate(*dateFlag)
	if err != nil {
		fatal("invalid -date %q: must be YYYY-MM-DD", *dateFlag)
	}

	logger := logging.NewText(*logLevel, os.Stderr)
	client := schedule.NewClient(*baseURL, cfg.RequestTimeout, logger)
	service := booking.NewService(booking.NewMemoryStore(), client, client, *psychID, logger, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	sess, err := service.StartSession(ctx)
	if err != nil {
		fatal("start session: %v", err)
	}

	sess, err = service.SelectDate(ctx, sess.ID, date)
	if err != nil {
		fatal("select date: %v", err)
	}
	if sess.Status == booking.StatusFailed {
		fatal("%s", sess.StatusMessage)
	}

	if *timeFlag == "" {
		if len(sess.AvailableSlots) == 0 {
			fmt.Printf("No available slots on %s.\n", sess.SelectedDate)
			return
		}
		fmt.Printf("Available slots on %s:\n", sess.SelectedDate)
		for _, slot := range sess.AvailableSlots {
			fmt.Printf("  %s\n", slot)
		}
		return
	}

	if _, err = service.SelectSlot(ctx, sess.ID, *timeFlag); err != nil {
		if errors.Is(err, booking.ErrSlotUnavailable) {
			fatal("slot %s is not available on %s", *timeFlag, sess.SelectedDate)
		}
		fatal("select slot: %v", err)
	}

	for field, value := range map[booking.ContactField]string{
		booking.FieldGivenName:  *nameFlag,
		booking.FieldFamilyName: *surnameFlag,
		booking.FieldPhone:      *phoneFlag,
	} {
		if _, err = service.UpdateContact(ctx, sess.ID, field, value); err != nil {
			fatal("set %s: %v", field, err)
		}
	}

	result, err := service.Submit(ctx, sess.ID)
	if err != nil {
		var validationErr *booking.ValidationError
		if errors.As(err, &validationErr) {
			fatal("missing required fields: %v (pass -name, -surname and -phone)", validationErr.Missing)
		}
		fatal("submit: %v", err)
	}

	if result.Status != booking.StatusSucceeded {
		fatal("%s", result.Message)
	}
	fmt.Println(result.Message)
}

func fatal(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "bookctl: "+format+"\n", args...)
	os.Exit(1)
}
