package cli

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/shaiso/botline/internal/bot"
	"github.com/shaiso/botline/internal/bots"
	"github.com/shaiso/botline/internal/config"
	"github.com/shaiso/botline/internal/pipeline"
	"github.com/shaiso/botline/internal/telemetry"
)

// NewRunCmd создаёт команду одного прохода бота.
func NewRunCmd(outputFn func(cmd *cobra.Command) *Output) *cobra.Command {
	var configPath string
	var moduleFlag string
	var inputPath string
	var splitLines bool

	cmd := &cobra.Command{
		Use:   "run BOT_ID",
		Short: "Run a bot once over an in-memory pipeline",
		Long: "Loads the input into the bot's source queue, processes it until the queue is empty " +
			"and prints the destination queues.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			botID := args[0]

			settings, err := config.LoadFile(configPath)
			if err != nil {
				return err
			}

			module, err := resolveModule(settings, botID, moduleFlag)
			if err != nil {
				return err
			}

			processor, err := bots.NewRegistry().Get(module)
			if err != nil {
				return err
			}

			input, err := readInput(cmd.InOrStdin(), inputPath, splitLines)
			if err != nil {
				return err
			}

			pipe, err := RunOnce(cmd.Context(), settings, botID, processor, input, cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			out := outputFn(cmd)
			for _, name := range settings.Pipeline[botID].Destinations {
				out.Queue(name, pipe.Queue(name))
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "botline.yaml", "Settings file (system, runtime, pipeline)")
	cmd.Flags().StringVar(&moduleFlag, "module", "", "Bot module (overrides runtime 'module')")
	cmd.Flags().StringVarP(&inputPath, "input", "i", "", "Input file, '-' for stdin")
	cmd.Flags().BoolVar(&splitLines, "split-lines", false, "Treat every non-empty input line as a separate message")

	return cmd
}

// RunOnce выполняет один проход бота на новом in-memory pipeline.
//
// input кладётся в source-очередь бота; логи бота пишутся в logW.
// Возвращает pipeline, чтобы вызывающий мог прочитать очереди.
func RunOnce(ctx context.Context, settings *config.Settings, botID string, processor bot.Processor, input [][]byte, logW io.Writer) (*pipeline.Memory, error) {
	pipe := pipeline.NewMemory()
	level := telemetry.ParseLevel(settings.System.LoggingLevel)

	b, err := bot.New(botID, bot.Config{
		System:              settings.System,
		Runtime:             settings.Runtime,
		Pipeline:            settings.Pipeline,
		Logger:              telemetry.NewBotLogger(logW, botID, level),
		SourcePipeline:      pipe,
		DestinationPipeline: pipe,
	}, processor)
	if err != nil {
		return nil, err
	}

	source := settings.Pipeline[botID].Source
	for _, msg := range input {
		pipe.Push(source, msg)
	}

	err = b.Start(ctx, bot.StartOptions{
		ErrorOnPipeline: true,
		OneShot:         true,
	})
	return pipe, err
}

// readInput читает вход целиком или построчно.
func readInput(stdin io.Reader, path string, splitLines bool) ([][]byte, error) {
	var data []byte
	var err error

	switch path {
	case "":
		return nil, nil
	case "-":
		data, err = io.ReadAll(stdin)
	default:
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("read input: %w", err)
	}

	if !splitLines {
		return [][]byte{data}, nil
	}

	var input [][]byte
	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 64*1024), 16*1024*1024)
	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		input = append(input, bytes.Clone(line))
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read input: %w", err)
	}
	return input, nil
}
