// tropic-ctl exercises the library from the command line: ping, chip
// info, R-mem read/write and device random bytes. It has no commands for
// pairing keys, ECC keys, signing or monotonic counters. It talks to a real device over platform/spidev
// unless -mock is given, in which case it drives an in-process
// platform/mock simulator instead.
package main

import (
	"encoding/hex"
	"fmt"
	"log"
	"os"

	"github.com/fatih/color"
	"github.com/urfave/cli"

	"github.com/vpilat/libtropic-go"
	"github.com/vpilat/libtropic-go/platform/mock"
	"github.com/vpilat/libtropic-go/platform/spidev"
)

var handle *tropic.Handle

func openHandle(c *cli.Context) error {
	handle = tropic.New()
	cfg := tropic.DefaultConfig()

	if c.GlobalBool("mock") {
		dev := mock.NewDevice()
		plat := mock.NewPlatform(dev)
		return handle.Init(plat, cfg)
	}

	plat, err := spidev.Open(spidev.DefaultOptions())
	if err != nil {
		return err
	}
	return handle.Init(plat, cfg)
}

func printOK(label string) {
	fmt.Println(color.GreenString("ok"), label)
}

func printErr(err error) {
	fmt.Fprintln(os.Stderr, color.RedString("error:"), err)
}

func pingCommand(c *cli.Context) error {
	msg := []byte(c.Args().First())
	if len(msg) == 0 {
		msg = []byte("ping")
	}
	out, err := handle.Ping(msg)
	if err != nil {
		printErr(err)
		return err
	}
	fmt.Printf("%s %s\n", color.CyanString("echo:"), out)
	return nil
}

func infoCommand(c *cli.Context) error {
	id, err := handle.ReadChipID()
	if err != nil {
		printErr(err)
		return err
	}
	fmt.Println(color.CyanString("chip id:"), id.String())

	fw, err := handle.ReadRiscvFwVersion()
	if err != nil {
		printErr(err)
		return err
	}
	fmt.Printf("%s %d.%d.%d\n", color.CyanString("riscv fw:"), fw[3], fw[2], fw[1])
	return nil
}

func rmemWriteCommand(c *cli.Context) error {
	slot := tropic.RMemSlot(c.Int("slot"))
	data, err := hex.DecodeString(c.Args().First())
	if err != nil {
		return err
	}
	if err := handle.RMemDataWrite(slot, data); err != nil {
		printErr(err)
		return err
	}
	printOK(fmt.Sprintf("wrote %d bytes to slot %d", len(data), slot))
	return nil
}

func rmemReadCommand(c *cli.Context) error {
	slot := tropic.RMemSlot(c.Int("slot"))
	data, err := handle.RMemDataRead(slot)
	if err != nil {
		printErr(err)
		return err
	}
	fmt.Println(hex.EncodeToString(data))
	return nil
}

func randomCommand(c *cli.Context) error {
	n := c.Int("n")
	if n <= 0 {
		n = 32
	}
	out, err := handle.RandomValueGet(byte(n))
	if err != nil {
		printErr(err)
		return err
	}
	fmt.Println(hex.EncodeToString(out))
	return nil
}

func main() {
	app := cli.NewApp()
	app.Name = "tropic-ctl"
	app.Usage = "drive a TROPIC01 secure element from the command line"
	app.Flags = []cli.Flag{
		cli.BoolFlag{Name: "mock", Usage: "use an in-process simulator instead of real hardware"},
	}
	app.Before = openHandle
	app.Commands = []cli.Command{
		cli.Command{
			Name:   "ping",
			Usage:  "send a ping and print the device's echo",
			Action: pingCommand,
		},
		cli.Command{
			Name:   "info",
			Usage:  "print chip identity and RISC-V firmware version",
			Action: infoCommand,
		},
		cli.Command{
			Name:  "rmem",
			Usage: "read/write the user-data memory slots",
			Subcommands: []cli.Command{
				cli.Command{
					Name:   "write",
					Usage:  "write hex-encoded data to a slot",
					Flags:  []cli.Flag{cli.IntFlag{Name: "slot"}},
					Action: rmemWriteCommand,
				},
				cli.Command{
					Name:   "read",
					Usage:  "read a slot as hex",
					Flags:  []cli.Flag{cli.IntFlag{Name: "slot"}},
					Action: rmemReadCommand,
				},
			},
		},
		cli.Command{
			Name:   "random",
			Usage:  "fetch n random bytes from the device TRNG",
			Flags:  []cli.Flag{cli.IntFlag{Name: "n", Value: 32}},
			Action: randomCommand,
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
