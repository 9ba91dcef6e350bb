package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/wailsapp/wails/v2/pkg/runtime"

	"github.com/user/skygp_go/internal/config"
	"github.com/user/skygp_go/internal/pipeline"
)

// App is bound to the frontend.
type App struct {
	ctx    context.Context
	logger *slog.Logger
}

func NewApp(logger *slog.Logger) *App {
	return &App{logger: logger.With("comp", "gui")}
}

// Startup is called when the app starts. The context is saved so the
// runtime methods can be called.
func (a *App) Startup(ctx context.Context) {
	a.ctx = ctx
	runtime.WindowSetTitle(a.ctx, "SkyGP Training Report")
}

func (a *App) sendStatus(message string) {
	if a.ctx != nil {
		runtime.EventsEmit(a.ctx, "statusUpdate", message)
	}
	a.logger.Info(message)
}

func (a *App) finish(ok bool, message string) {
	a.sendStatus(message)
	if a.ctx != nil {
		runtime.EventsEmit(a.ctx, "generationComplete", ok, message)
	}
}

// HandleBuildReport loads configPath, builds the training set, fits the
// emulator and writes the PDF report to pdfPath. Work happens in the
// background; progress arrives as statusUpdate events and the outcome as a
// generationComplete event.
func (a *App) HandleBuildReport(configPath string, pdfPath string) (string, error) {
	if pdfPath == "" {
		return "", fmt.Errorf("a PDF output path is required")
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		return "", err
	}
	if a.ctx != nil {
		runtime.EventsEmit(a.ctx, "clearLog")
	}
	a.sendStatus(fmt.Sprintf("Request: config=[%s], PDF=[%s]", configPath, pdfPath))

	go func() {
		defer func() {
			if r := recover(); r != nil {
				a.finish(false, fmt.Sprintf("PANIC recovered: %v", r))
			}
		}()
		if a.ctx != nil {
			runtime.EventsEmit(a.ctx, "generationStart")
		}

		ctx := a.ctx
		if ctx == nil {
			ctx = context.Background()
		}
		opts := pipeline.Options{PDFPath: pdfPath, Fit: true}
		res, err := pipeline.Run(ctx, cfg, opts, a.logger, a.sendStatus)
		if err != nil {
			a.finish(false, fmt.Sprintf("Error building report: %v", err))
			return
		}
		a.finish(true, fmt.Sprintf("PDF report successfully generated: %s (build %s)", pdfPath, res.BuildID))
	}()

	return "Report generation started in background.", nil
}
