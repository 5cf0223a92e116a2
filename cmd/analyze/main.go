// Command analyze runs form analysis over a recorded video (or a pose
// JSONL export) and writes the per-frame metrics CSV and the overlay
// command stream, without needing the server or a database.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"syscall"

	"github.com/sirupsen/logrus"

	"github.com/Yogeshkharb111/Form-Correctness-Detection-Using-Pose-Estimation/internal/analysis"
	"github.com/Yogeshkharb111/Form-Correctness-Detection-Using-Pose-Estimation/internal/config"
	"github.com/Yogeshkharb111/Form-Correctness-Detection-Using-Pose-Estimation/internal/models"
	"github.com/Yogeshkharb111/Form-Correctness-Detection-Using-Pose-Estimation/internal/services"
	"github.com/Yogeshkharb111/Form-Correctness-Detection-Using-Pose-Estimation/internal/sink"
)

func main() {
	var (
		videoPath   = flag.String("input", "", "video file to analyze")
		posesPath   = flag.String("poses", "", "pose JSONL export to replay instead of a video")
		exercise    = flag.String("exercise", "", "exercise type: bicep_curl, lateral_raise or squat")
		csvPath     = flag.String("csv", "metrics.csv", "per-frame metrics CSV output")
		overlayPath = flag.String("overlay", "", "overlay command JSONL output (optional)")
		rulesPath   = flag.String("rules", "rules.toml", "rule thresholds TOML file")
		verbose     = flag.Bool("v", false, "debug logging")
	)
	flag.Parse()

	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	if *verbose {
		logrus.SetLevel(logrus.DebugLevel)
	}

	if !config.ValidExercise(models.Exercise(*exercise)) {
		logrus.Fatalf("unknown exercise %q, want bicep_curl, lateral_raise or squat", *exercise)
	}
	if (*videoPath == "") == (*posesPath == "") {
		logrus.Fatal("exactly one of --input and --poses is required")
	}

	rules, err := config.LoadRules(*rulesPath)
	if err != nil {
		logrus.WithError(err).Fatal("invalid rules configuration")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var src analysis.Source
	if *posesPath != "" {
		fileSrc, err := services.NewPoseFileSource(*posesPath)
		if err != nil {
			logrus.WithError(err).Fatal("opening pose file failed")
		}
		defer fileSrc.Close()
		src = fileSrc
	} else {
		cfg := config.LoadConfig()
		src = services.NewVideoSource(cfg.DetectorCommand, cfg.DetectorModel, *videoPath)
	}

	csvSink, err := sink.NewCSV(*csvPath)
	if err != nil {
		logrus.WithError(err).Fatal("creating CSV output failed")
	}
	defer csvSink.Close()

	sinks := []analysis.Sink{csvSink}
	if *overlayPath != "" {
		overlaySink, err := sink.NewOverlayFile(*overlayPath)
		if err != nil {
			logrus.WithError(err).Fatal("creating overlay output failed")
		}
		defer overlaySink.Close()
		sinks = append(sinks, overlaySink)
	}

	pipeline, err := analysis.NewPipeline(rules, models.Exercise(*exercise), sinks...)
	if err != nil {
		logrus.WithError(err).Fatal("building pipeline failed")
	}

	summary, err := pipeline.Run(ctx, src)
	if err != nil && !errors.Is(err, context.Canceled) {
		logrus.WithError(err).Fatal("analysis failed")
	}
	if err != nil {
		// Interrupted: report what was analyzed and let the deferred
		// sink closes flush the rows already written.
		logrus.Warn("analysis interrupted, keeping partial results")
	}

	printSummary(summary)
	logrus.WithField("csv", *csvPath).Info("analysis complete")
}

func printSummary(s analysis.Summary) {
	fmt.Printf("frames:    %d (%d correct, %d incorrect, %d unscored)\n",
		s.Frames, s.Correct, s.Incorrect, s.Unscored)
	fmt.Printf("correct:   %.1f%% of scored frames\n", s.CorrectRatio()*100)

	if len(s.Violations) > 0 {
		fmt.Println("violations:")
		reasons := make([]string, 0, len(s.Violations))
		for r := range s.Violations {
			reasons = append(reasons, string(r))
		}
		sort.Strings(reasons)
		for _, r := range reasons {
			fmt.Printf("  %-18s %d\n", r, s.Violations[models.ReasonCode(r)])
		}
	}

	printStats("elbow angle", s.ElbowStats())
	printStats("back tilt", s.BackStats())
	printStats("knee angle", s.KneeStats())
}

func printStats(name string, st analysis.MetricStats) {
	if st.N == 0 {
		return
	}
	fmt.Printf("%-12s min %.1f  mean %.1f  max %.1f\n", name+":", st.Min, st.Mean, st.Max)
}
