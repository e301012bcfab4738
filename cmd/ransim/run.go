package main

import (
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"
	"github.com/tebeka/atexit"

	"github.com/sarchlab/ransim/mac"
	"github.com/sarchlab/ransim/monitoring"
	"github.com/sarchlab/ransim/nr"
	"github.com/sarchlab/ransim/phy"
	"github.com/sarchlab/ransim/recording"
	"github.com/sarchlab/ransim/rf"
	"github.com/sarchlab/ransim/sigproc"
	"github.com/sarchlab/ransim/sim"
)

var runFlags = struct {
	scs           int
	numSlots      int
	tbsBytes      int
	csiPeriod     int
	seed          uint64
	noiseFigureDB float64
	distance      float64
	recordPath    string
	monitor       bool
	monitorPort   int
	logEvents     bool
}{}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a two-endpoint downlink simulation.",
	RunE: func(_ *cobra.Command, _ []string) error {
		return runSimulation()
	},
}

func init() {
	f := runCmd.Flags()
	f.IntVar(&runFlags.scs, "scs", 30,
		"subcarrier spacing in kHz (15, 30, 60, or 120)")
	f.IntVar(&runFlags.numSlots, "slots", 100,
		"number of slots to simulate")
	f.IntVar(&runFlags.tbsBytes, "tbs-bytes", 8,
		"transport block size in bytes")
	f.IntVar(&runFlags.csiPeriod, "csi-period", 10,
		"channel measurement period in slots, 0 to disable")
	f.Uint64Var(&runFlags.seed, "seed", 1,
		"random seed for payloads and noise")
	f.Float64Var(&runFlags.noiseFigureDB, "noise-figure", 7,
		"receiver noise figure in dB, negative to disable noise")
	f.Float64Var(&runFlags.distance, "distance", 100,
		"distance between the endpoints in meters")
	f.StringVar(&runFlags.recordPath, "record", "",
		"record packet and decode traces into this SQLite database")
	f.BoolVar(&runFlags.monitor, "monitor", false,
		"start the monitoring server")
	f.IntVar(&runFlags.monitorPort, "monitor-port", 0,
		"port of the monitoring server, 0 for a random port")
	f.BoolVar(&runFlags.logEvents, "log-events", false,
		"log every event to stdout")

	rootCmd.AddCommand(runCmd)
}

func runSimulation() error {
	if _, err := nr.SubcarrierSpacing(runFlags.scs).Mu(); err != nil {
		return err
	}
	num := nr.MustNewNumerology(
		nr.SubcarrierSpacing(runFlags.scs), 0)

	rate := 1 * sim.MHz

	engine := sim.NewSerialEngine()
	if runFlags.logEvents {
		engine.AcceptHook(sim.NewEventLogger(
			log.New(os.Stdout, "", 0)))
	}

	medium := rf.NewMedium("Medium", engine)

	scheduler := mac.MakeBuilder().
		WithEngine(engine).
		WithMedium(medium).
		WithNumerology(num).
		WithNumSlots(runFlags.numSlots).
		WithTbsBytes(runFlags.tbsBytes).
		WithCsiPeriod(runFlags.csiPeriod).
		WithSeed(runFlags.seed).
		Build("Scheduler")

	gnb := phy.MakeBuilder().
		WithNumerology(num).
		WithSampleRate(rate).
		WithCellID(1).
		WithPosition(rf.Position{}).
		WithNoiseFigureDB(runFlags.noiseFigureDB).
		WithNoiseSeed(runFlags.seed).
		WithProcessor(sigproc.NewBaseline(num, rate)).
		WithPacketSink(medium).
		Build("GNB")

	ue := phy.MakeBuilder().
		WithNumerology(num).
		WithSampleRate(rate).
		WithCellID(1).
		WithPosition(rf.Position{X: runFlags.distance}).
		WithNoiseFigureDB(runFlags.noiseFigureDB).
		WithNoiseSeed(runFlags.seed + 1).
		WithProcessor(sigproc.NewBaseline(num, rate)).
		WithPacketSink(medium).
		WithPduSink(scheduler).
		WithChannelQualitySink(scheduler).
		Build("UE")

	medium.Register(gnb)
	medium.Register(ue)
	scheduler.AttachDownlink(gnb, ue)

	if runFlags.recordPath != "" {
		rec := recording.New(runFlags.recordPath)
		medium.AcceptHook(recording.NewPacketHook(rec, engine))
		ue.AcceptHook(recording.NewPduHook(rec, engine))
	}

	if runFlags.monitor {
		monitor := monitoring.NewMonitor()
		monitor.RegisterEngine(engine)
		monitor.RegisterComponent(gnb)
		monitor.RegisterComponent(ue)
		monitor.RegisterComponent(scheduler)
		monitor.WithPortNumber(runFlags.monitorPort)
		monitor.StartServer()
	}

	scheduler.Start()
	if err := engine.Run(); err != nil {
		return err
	}

	printStats(scheduler)
	atexit.Exit(0)

	return nil
}

func printStats(s *mac.Scheduler) {
	stats := s.Stats()

	fmt.Printf("blocks sent:        %d\n", stats.BlocksSent)
	fmt.Printf("blocks delivered:   %d\n", stats.BlocksDelivered)
	fmt.Printf("blocks lost:        %d\n", stats.BlocksLost)
	fmt.Printf("crc failures:       %d\n", stats.CrcFailures)
	fmt.Printf("retransmissions:    %d\n", stats.Retransmissions)
	fmt.Printf("channel reports:    %d\n", stats.ChannelReports)

	if report, ok := s.LastChannelReport(); ok {
		fmt.Printf("last cqi:           %v\n", report.RBCqi)
	}
}
