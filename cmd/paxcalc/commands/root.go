// Package commands implements the offline paxcalc command line. It serves
// the bundled indices (or a single index file) without postgres or redis.
package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/stemsi/paxcalc-backend/internal/dataset"
	"github.com/stemsi/paxcalc-backend/internal/logger"
	"github.com/stemsi/paxcalc-backend/internal/model"
	"github.com/stemsi/paxcalc-backend/internal/service"
)

type options struct {
	year       int
	indexType  string
	file       string
	datasetDir string
	logLevel   string

	paxSvc  *service.PaxService
	calcSvc *service.CalculatorService
}

// Execute runs the root command against os.Args.
func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:          "paxcalc",
		Short:        "Convert autocross lap times between PAX classes",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.setup(cmd)
		},
	}

	flags := root.PersistentFlags()
	flags.IntVarP(&opts.year, "year", "y", 0, "index year (0 = newest available)")
	flags.StringVarP(&opts.indexType, "type", "t", string(model.IndexTypeSolo), "event format: Solo or ProSolo")
	flags.StringVarP(&opts.file, "file", "f", "", "use this index JSON file instead of the bundled catalog")
	flags.StringVar(&opts.datasetDir, "dataset-dir", "", "directory of extra index JSON files")
	flags.StringVar(&opts.logLevel, "log-level", "warn", "log level written to stderr")

	root.AddCommand(
		convertCmd(opts),
		classesCmd(opts),
		indicesCmd(opts),
		validateCmd(opts),
		formatCmd(),
	)
	return root
}

func (o *options) setup(cmd *cobra.Command) error {
	if !o.eventType().Valid() {
		return fmt.Errorf("unknown event format %q", o.indexType)
	}

	var indices []*model.PaxIndex
	if o.file != "" {
		idx, err := dataset.LoadFile(o.file)
		if err != nil {
			return err
		}
		indices = []*model.PaxIndex{idx}
	} else {
		var err error
		indices, err = dataset.Catalog(o.datasetDir)
		if err != nil {
			return err
		}
	}

	log := logger.New(cmd.ErrOrStderr(), o.logLevel, "pretty")
	o.paxSvc = service.NewPaxService(nil, nil, indices, 0, log)
	o.calcSvc = service.NewCalculatorService(o.paxSvc, nil, nil, nil, log)
	return nil
}

func (o *options) eventType() model.IndexType {
	return model.IndexType(o.indexType)
}
