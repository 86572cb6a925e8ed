// Command client is a headless protocol debugger: it connects to a
// running server, performs the key exchange, runs one auth command,
// and prints every packet it receives.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/TripleSteak/Final-Aisle/pkg/client"
	"github.com/TripleSteak/Final-Aisle/pkg/logging"
	"github.com/TripleSteak/Final-Aisle/pkg/packet"
)

func main() {
	addr := flag.String("addr", "127.0.0.1:8031", "Server address")
	logLevel := flag.String("log-level", "info", "Log level: "+logging.LevelNames())
	flag.Parse()

	if err := logging.Setup(logging.Options{
		Level:  *logLevel,
		Format: "text",
		Output: os.Stdout,
	}); err != nil {
		fmt.Fprintf(os.Stderr, "invalid logging config: %v\n", err)
		os.Exit(1)
	}

	c, err := client.Dial(*addr)
	if err != nil {
		slog.Error("connect failed", "err", err)
		os.Exit(1)
	}
	defer c.Close()
	slog.Info("secure channel established", "addr", *addr)

	// Print inbound packets as they arrive.
	go func() {
		for {
			pkt, err := c.Recv(0)
			if err != nil {
				slog.Error("receive failed", "err", err)
				os.Exit(1)
			}
			printPacket(pkt)
		}
	}()

	fmt.Println("commands: register <email> <username> <password> | verify <code> | login <id> <password> | quit")
	sc := bufio.NewScanner(os.Stdin)
	for sc.Scan() {
		fields := strings.Fields(sc.Text())
		if len(fields) == 0 {
			continue
		}
		var err error
		switch fields[0] {
		case "register":
			if len(fields) != 4 {
				fmt.Println("usage: register <email> <username> <password>")
				continue
			}
			err = c.Register(fields[1], fields[2], fields[3])
		case "verify":
			if len(fields) != 2 {
				fmt.Println("usage: verify <code>")
				continue
			}
			err = c.VerifyEmail(fields[1])
		case "login":
			if len(fields) != 3 {
				fmt.Println("usage: login <id> <password>")
				continue
			}
			err = c.Login(fields[1], fields[2])
		case "quit":
			return
		default:
			fmt.Println("unknown command:", fields[0])
			continue
		}
		if err != nil {
			slog.Error("send failed", "err", err)
		}
		// Give the reply a moment to land before the next prompt.
		time.Sleep(100 * time.Millisecond)
	}
}

func printPacket(pkt packet.Packet) {
	switch pkt.Type() {
	case packet.TypeEmpty:
		fmt.Printf("<- %s\n", pkt.Key())
	case packet.TypeComposite:
		comp, _ := pkt.Composite()
		parts := make([]string, comp.Len())
		for i := range parts {
			parts[i], _ = comp.String(i)
		}
		fmt.Printf("<- %s [%s]\n", pkt.Key(), strings.Join(parts, ", "))
	case packet.TypeString:
		v, _ := pkt.String()
		fmt.Printf("<- %s %q\n", pkt.Key(), v)
	case packet.TypeInteger:
		v, _ := pkt.Int()
		fmt.Printf("<- %s %d\n", pkt.Key(), v)
	case packet.TypeBoolean:
		v, _ := pkt.Bool()
		fmt.Printf("<- %s %v\n", pkt.Key(), v)
	case packet.TypeFloat:
		v, _ := pkt.Float()
		fmt.Printf("<- %s %g\n", pkt.Key(), v)
	case packet.TypeDouble:
		v, _ := pkt.Double()
		fmt.Printf("<- %s %g\n", pkt.Key(), v)
	default:
		fmt.Printf("<- %s (%s)\n", pkt.Key(), pkt.Type())
	}
}
