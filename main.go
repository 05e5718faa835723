package main

import "github.com/bharatcyclehub/bch-admin/cmd"

func main() {
	cmd.Execute()
}
