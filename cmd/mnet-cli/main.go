// Command mnet-cli is a thin driver over mnetclient: it opens a
// transport (serial or TCP tunnel), authenticates against one
// controller, and prints the requested data points. It exists to
// exercise the client from the command line, not as a production
// monitor/dashboard driver (that layer is out of scope here).
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/mita-teknik/mnet/datapoint"
	"github.com/mita-teknik/mnet/internal/datatable"
	"github.com/mita-teknik/mnet/mnetclient"
	"github.com/mita-teknik/mnet/transport"
	"github.com/mita-teknik/mnet/transport/serialchannel"
	"github.com/mita-teknik/mnet/transport/tcpchannel"
)

func main() {
	var (
		serialDev   = flag.String("serial", "", "serial device path, e.g. /dev/ttyUSB0 (mutually exclusive with -tcp)")
		tcpAddr     = flag.String("tcp", "", "TCP tunnel address, e.g. 192.0.2.10:4001 (mutually exclusive with -serial)")
		tableFile   = flag.String("table", "testdata/datapoints.ini", "data-point descriptor table")
		optionsFile = flag.String("options", "", "client policy overlay INI (optional)")
		dst         = flag.Uint("dst", 1, "target controller address")
		points      = flag.String("points", "", "comma-separated data point names to fetch")
		login       = flag.Bool("login", false, "log in before fetching (required for write operations)")
		verbose     = flag.Bool("verbose", false, "enable debug logging")
		connTimeout = flag.Duration("conn-timeout", 5*time.Second, "not applied: the transport is dialed or opened without a timeout")
	)
	flag.Parse()

	if *verbose {
		log.SetLevel(log.DebugLevel)
	}

	if err := run(*serialDev, *tcpAddr, *tableFile, *optionsFile, byte(*dst), *points, *login, *connTimeout); err != nil {
		fmt.Fprintln(os.Stderr, "mnet-cli:", err)
		os.Exit(1)
	}
}

func run(serialDev, tcpAddr, tableFile, optionsFile string, dst byte, pointsArg string, doLogin bool, connTimeout time.Duration) error {
	ch, closeFn, err := openChannel(serialDev, tcpAddr, connTimeout)
	if err != nil {
		return err
	}
	defer closeFn()

	table, err := datatable.Load(tableFile)
	if err != nil {
		return err
	}

	opts := mnetclient.DefaultOptions()
	if optionsFile != "" {
		opts, err = mnetclient.LoadOptionsFile(optionsFile, opts)
		if err != nil {
			return err
		}
	}

	client := mnetclient.New(ch, table, opts)

	if _, err := client.GetSerialNumber(dst); err != nil {
		return fmt.Errorf("get serial number: %w", err)
	}
	if doLogin {
		if err := client.Login(dst); err != nil {
			return fmt.Errorf("login: %w", err)
		}
	}

	names := splitNonEmpty(pointsArg)
	if len(names) == 0 {
		names = table.Names()
	}

	reqs := make([]mnetclient.DataRequest, len(names))
	for i, n := range names {
		reqs[i] = mnetclient.DataRequest{Name: n, Avg: datapoint.Current}
	}
	values, err := client.RequestMultipleData(dst, reqs)
	if err != nil {
		return fmt.Errorf("request data: %w", err)
	}

	for i, v := range values {
		printValue(names[i], v)
	}
	return nil
}

func openChannel(serialDev, tcpAddr string, connTimeout time.Duration) (transport.ByteChannel, func(), error) {
	switch {
	case serialDev != "" && tcpAddr != "":
		return nil, nil, fmt.Errorf("specify only one of -serial or -tcp")
	case serialDev != "":
		ch, err := serialchannel.Open(serialDev)
		if err != nil {
			return nil, nil, err
		}
		return ch, func() { ch.Close() }, nil
	case tcpAddr != "":
		ch, err := tcpchannel.Dial(tcpAddr)
		if err != nil {
			return nil, nil, err
		}
		return ch, func() { ch.Close() }, nil
	default:
		return nil, nil, fmt.Errorf("specify -serial or -tcp")
	}
}

func printValue(name string, v datapoint.Value) {
	switch v.Kind {
	case datapoint.KindInt32:
		fmt.Printf("%s = %d\n", name, v.Int32)
	case datapoint.KindFloat64:
		fmt.Printf("%s = %.3f\n", name, v.Float64)
	case datapoint.KindText:
		fmt.Printf("%s = %q\n", name, v.Text)
	case datapoint.KindTimestamp:
		fmt.Printf("%s = %s\n", name, v.Timestamp.Format(time.RFC3339))
	case datapoint.KindStatusCodes:
		fmt.Printf("%s = [%d %d]\n", name, v.StatusCodes[0], v.StatusCodes[1])
	case datapoint.KindBytes:
		fmt.Printf("%s = % x\n", name, v.Bytes)
	}
}

func splitNonEmpty(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
