package alert_test

import (
	"context"
	"fmt"

	"github.com/plantops/alertfeed/pkg/alert"
	"github.com/plantops/alertfeed/pkg/device"
)

func ExamplePublisher() {
	ctx := context.Background()

	store := alert.NewMemoryStore()
	rules := []alert.Rule{{
		TagID:   "boiler.temp",
		Device:  "boiler-7",
		Metric:  "temperature",
		OwnerID: "operator-7",
		Warn:    80,
		Crit:    95,
	}}
	pub := alert.NewPublisher(store, nil, rules)

	n, err := pub.Publish(ctx, device.Sample{TagID: "boiler.temp", Value: 97.2, StatusGood: true})
	if err != nil {
		fmt.Println(err)
		return
	}
	fmt.Println(n.Severity)

	count, _ := store.CountUnread(ctx, "operator-7")
	fmt.Println(count)

	// Output:
	// critical
	// 1
}
