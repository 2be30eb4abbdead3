package cache

import "fmt"

func JobStatusKey(filename string) string {
	return fmt.Sprintf("job:%s", filename)
}

func UploadRateKey(clientIP string) string {
	return fmt.Sprintf("ratelimit:upload:%s", clientIP)
}
