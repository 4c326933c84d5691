// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/gameres

/*
Package audio probes sound resources and exposes them as read-only [Sound] streams.

Formats register in an audio [Registry] the same way container decoders do:
by first-four-byte signature, with the wildcard bucket for formats that
validate structure instead. WAV and Ogg Vorbis are recognized directly; VAW
wraps one of them behind a 0x40-byte resource header and delegates to the
inner format.

	reg := audio.NewRegistry(logger)
	wav := audio.NewWAV()
	ogg := audio.NewOGG()
	reg.Register(wav, ogg, audio.NewVAW(wav, ogg))

	snd, err := audio.OpenSound(reg, nil, "voice/0001.vaw")
	if err != nil {
		return err
	}
	defer snd.Close()

	fmt.Println(snd.Format().SamplesPerSecond, snd.PcmSize())

A Sound never re-encodes: WAV payload is the raw "data" chunk and Ogg payload is
the bitstream itself. Write returns gameres.ErrUnsupported.
*/
package audio
