package seed

import (
	"context"
	"fmt"

	"adhub/internal/adspaces/service"
	"adhub/pkg/logger"
	"adhub/pkg/model"
)

// DemoInventory is the starter catalogue written by the migration job.
func DemoInventory() []*model.AdSpace {
	return []*model.AdSpace{
		{
			Name:        "Siam Square Billboard",
			Type:        model.AdSpaceTypeBillboard,
			City:        "Bangkok",
			Address:     "Rama I Road, Pathum Wan",
			PricePerDay: model.MustMoney("150.00"),
		},
		{
			Name:        "Asok Junction LED Wall",
			Type:        model.AdSpaceTypeDigitalScreen,
			City:        "Bangkok",
			Address:     "Sukhumvit Road Soi 21",
			PricePerDay: model.MustMoney("320.50"),
		},
		{
			Name:        "BTS Mo Chit Platform Panels",
			Type:        model.AdSpaceTypeTransit,
			City:        "Bangkok",
			Address:     "Phahonyothin Road, Chatuchak",
			PricePerDay: model.MustMoney("95.00"),
		},
		{
			Name:        "Nimman Bus Shelter",
			Type:        model.AdSpaceTypeBusStop,
			City:        "Chiang Mai",
			Address:     "Nimmanhaemin Road",
			PricePerDay: model.MustMoney("40.00"),
		},
		{
			Name:        "Central Festival Atrium Display",
			Type:        model.AdSpaceTypeMallDisplay,
			City:        "Chiang Mai",
			Address:     "Super Highway Chiang Mai-Lampang Road",
			PricePerDay: model.MustMoney("210.00"),
		},
		{
			Name:        "Beach Road Billboard",
			Type:        model.AdSpaceTypeBillboard,
			City:        "Pattaya",
			Address:     "Pattaya Sai 1 Road",
			PricePerDay: model.MustMoney("120.00"),
		},
	}
}

// Run writes inventory through the service when the store holds no ad spaces.
// It returns how many ad spaces were created.
func Run(ctx context.Context, svc service.AdSpaceService, inventory []*model.AdSpace, log *logger.Logger) (int, error) {
	count, err := svc.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to count ad spaces: %w", err)
	}
	if count > 0 {
		log.Info("Ad space store already populated, skipping seed", "count", count)
		return 0, nil
	}

	created := 0
	for _, adSpace := range inventory {
		if err := svc.Create(ctx, adSpace); err != nil {
			return created, fmt.Errorf("failed to seed ad space %q: %w", adSpace.Name, err)
		}
		created++
	}

	log.Info("Seeded ad spaces", "count", created)
	return created, nil
}
