// Package builtin registers every emitter kind shipped with tilted. Import
// it for its side effect.
package builtin

import (
	"firestige.xyz/tilted/internal/emitter"
	"firestige.xyz/tilted/internal/emitter/console"
	"firestige.xyz/tilted/internal/emitter/pushgateway"
	"firestige.xyz/tilted/internal/emitter/stream"
	"firestige.xyz/tilted/internal/emitter/webhook"
)

func init() {
	mustRegister(console.Kind, console.New)
	mustRegister(webhook.Kind, webhook.New)
	mustRegister(pushgateway.Kind, pushgateway.New)
	mustRegister(stream.Kind, stream.New)
}

func mustRegister(kind string, f emitter.Factory) {
	if err := emitter.Register(kind, f); err != nil {
		panic(err)
	}
}
