package hal

import "strconv"

func pinName(n int) string { return "gpio" + strconv.Itoa(n) }
