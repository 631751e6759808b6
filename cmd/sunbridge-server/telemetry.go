package main

import (
	"context"
	"log/slog"
	"sunbridge-backend/lib/platforms/anthropic"
	"sunbridge-backend/lib/platforms/highlevel"
	"sunbridge-backend/lib/platforms/highlevel/session"
	"sunbridge-backend/lib/platforms/n8n"
	"sunbridge-backend/lib/platforms/solar"
	"sunbridge-backend/lib/platforms/supabase"
	"sunbridge-backend/lib/restyutil"
	"sunbridge-backend/lib/serviceutil"
	"sunbridge-backend/lib/telemetry"
)

func InitTelemetry(ctx context.Context, verbose bool) {
	telemetry.InitSlog(verbose)

	if verbose {
		slog.DebugContext(ctx, "verbose logging enabled")
	}

	tel, err := telemetry.SetupFromEnv(ctx, "sunbridge-server")
	if err != nil {
		serviceutil.Fatal("setup telemetry", err)
	}
	go func() {
		<-ctx.Done()
		tel.Shutdown(context.Background())
	}()
	telemetry.InstrumentPerfStats(ctx)

	if !verbose {
		return
	}

	highlevel.SetRestyInstrumentOutput(
		restyutil.NewFilesystemOutput(".dev/resty/highlevel"),
	)
	session.SetRestyInstrumentOutput(
		restyutil.NewFilesystemOutput(".dev/resty/highlevel_session"),
	)
	supabase.SetRestyInstrumentOutput(
		restyutil.NewFilesystemOutput(".dev/resty/supabase"),
	)
	n8n.SetRestyInstrumentOutput(
		restyutil.NewFilesystemOutput(".dev/resty/n8n"),
	)
	anthropic.SetRestyInstrumentOutput(
		restyutil.NewFilesystemOutput(".dev/resty/anthropic"),
	)
	solar.SetRestyInstrumentOutput(
		restyutil.NewFilesystemOutput(".dev/resty/solar"),
	)
}
