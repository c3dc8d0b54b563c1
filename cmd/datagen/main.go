// Command datagen is a reference data generator: it emits the exact wire
// format ingestd expects, at a configurable sustained rate, against a TCP
// or Unix-socket target. Its purpose is to fix the wire format precisely
// (spec §1), the same role the teacher's loadtest/main.go plays for the
// WebSocket wire format, generalized from ramped client connections to a
// single steady producer of line-delimited records.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"net"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/vineetd/tradebook-ingestd/internal/table"
	"github.com/vineetd/tradebook-ingestd/internal/wire"
)

type genConfig struct {
	network        string // "tcp" or "unix"
	addr           string
	ratePerSec     int
	durationSec    int
	deleteFraction float64
	updateFraction float64
	orderIDPoolMax int
	tradeIDPoolMax int
}

func parseFlags() genConfig {
	cfg := genConfig{}
	flag.StringVar(&cfg.network, "network", "tcp", "tcp or unix")
	flag.StringVar(&cfg.addr, "addr", "127.0.0.1:9500", "target address (host:port for tcp, path for unix)")
	flag.IntVar(&cfg.ratePerSec, "rate", 1000, "messages per second")
	flag.IntVar(&cfg.durationSec, "duration", 0, "seconds to run, 0 = until interrupted")
	flag.Float64Var(&cfg.deleteFraction, "delete-fraction", 0.05, "fraction of messages that are deletes")
	flag.Float64Var(&cfg.updateFraction, "update-fraction", 0.4, "fraction of non-delete messages sent as Update rather than Insert (keys come from the same pool either way)")
	flag.IntVar(&cfg.orderIDPoolMax, "order-id-pool", 5000, "distinct OrderBook keys to cycle through")
	flag.IntVar(&cfg.tradeIDPoolMax, "trade-id-pool", 5000, "distinct TradeBook keys to cycle through")
	flag.Parse()
	return cfg
}

func main() {
	cfg := parseFlags()
	logger := log.New(os.Stdout, "[datagen] ", log.LstdFlags)

	conn, err := net.Dial(cfg.network, cfg.addr)
	if err != nil {
		logger.Fatalf("failed to connect to %s (%s): %v", cfg.addr, cfg.network, err)
	}
	defer conn.Close()
	w := bufio.NewWriter(conn)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if cfg.durationSec > 0 {
		var durCancel context.CancelFunc
		ctx, durCancel = context.WithTimeout(ctx, time.Duration(cfg.durationSec)*time.Second)
		defer durCancel()
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	logger.Printf("generating %d msg/s to %s://%s", cfg.ratePerSec, cfg.network, cfg.addr)

	ticker := time.NewTicker(time.Second / time.Duration(max(cfg.ratePerSec, 1)))
	defer ticker.Stop()

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	sent := 0
	reportTicker := time.NewTicker(5 * time.Second)
	defer reportTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			_ = w.Flush()
			logger.Printf("stopped after sending %d messages", sent)
			return
		case <-reportTicker.C:
			logger.Printf("sent %d messages (%d msg/s target)", sent, cfg.ratePerSec)
		case <-ticker.C:
			msg := nextMessage(rng, cfg)
			if _, err := w.WriteString(wire.Encode(msg) + "\n"); err != nil {
				logger.Fatalf("write failed: %v", err)
			}
			sent++
			if sent%100 == 0 {
				_ = w.Flush()
			}
		}
	}
}

func nextMessage(rng *rand.Rand, cfg genConfig) wire.DataMessage {
	msg := wire.DataMessage{Times: wire.Timestamps{SendMs: time.Now().UnixMilli()}}

	isTrade := rng.Float64() < 0.5
	if isTrade {
		msg.Table = wire.TradeBook
	} else {
		msg.Table = wire.OrderBook
	}

	poolMax := cfg.orderIDPoolMax
	idPrefix := "ORD"
	if isTrade {
		poolMax = cfg.tradeIDPoolMax
		idPrefix = "TRD"
	}
	key := idPrefix + "-" + strconv.Itoa(rng.Intn(poolMax))

	if rng.Float64() < cfg.deleteFraction {
		msg.Op = wire.Delete
		msg.Key = key
		return msg
	}

	if rng.Float64() < cfg.updateFraction {
		msg.Op = wire.Update
	} else {
		msg.Op = wire.Insert
	}

	schema := msg.Schema()
	row := randomRow(rng, schema, key)
	msg.Row = row
	msg.RowValid = true
	msg.Key = key
	return msg
}

var symbols = []string{"BTC", "ETH", "SOL", "AAPL", "MSFT", "TSLA"}
var sides = []string{"BUY", "SELL"}

func randomRow(rng *rand.Rand, schema *table.Schema, key string) table.Row {
	var row table.Row
	for i := 0; i < table.NumColumns; i++ {
		if i == 0 {
			row[i] = table.TextCell(key)
			continue
		}
		switch schema.Types[i] {
		case table.ColDecimal:
			row[i] = table.DecimalCell(int64(rng.Intn(1_000_000)), 2)
		case table.ColInt:
			row[i] = table.IntCell(int64(rng.Intn(10_000)))
		case table.ColTimestamp:
			row[i] = table.TimeCell(time.Now().UnixMilli())
		default:
			row[i] = textValueFor(rng, schema.Columns[i])
		}
	}
	return row
}

func textValueFor(rng *rand.Rand, column string) table.Cell {
	switch column {
	case "Symbol":
		return table.TextCell(symbols[rng.Intn(len(symbols))])
	case "Side":
		return table.TextCell(sides[rng.Intn(len(sides))])
	default:
		return table.TextCell(fmt.Sprintf("%s-%d", column, rng.Intn(1000)))
	}
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
