package pkg

import "codekids"

func AssertNoError(err error) {
	if err != nil {
		codekids.Logger.Error().Err(err).Msg("Error occurred that should not have occurred.")
		panic(err)
	}
}
