package main

import (
	"TripleDES/algorithm/des"
	"TripleDES/algorithm/tripledes"
	"bytes"
	"context"
	"fmt"
)

func main() {

	key := []byte{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 16}

	tables, err := des.StandardTables(des.IndexLSBFirst)
	if err != nil {
		panic(fmt.Errorf("failed to load des tables: %w", err))
	}
	cipher, err := des.New(tables)
	if err != nil {
		panic(err)
	}

	tdes, err := tripledes.New(cipher, key)
	if err != nil {
		panic(fmt.Errorf("failed to create triple des: %w", err))
	}

	ctx := context.Background()
	msg := []byte("hello worldDKADKL:ASKdl;kl;k ;lfkdsl;fkkdj kjk12k312ok3 klf;kdsl;fkdlsfl")

	for _, concurrent := range []bool{false, true} {
		env, err := tdes.Seal(ctx, msg, concurrent)
		if err != nil {
			panic(err)
		}
		decrypted, err := tdes.Open(ctx, env, concurrent)
		if err != nil {
			panic(err)
		}
		fmt.Printf("concurrent=%v ciphertext=%x\n", concurrent, env.Data)
		fmt.Println(string(decrypted), bytes.Equal(decrypted, msg))
	}
}
