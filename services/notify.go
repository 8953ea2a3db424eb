package services

import (
	"context"

	"github.com/rajagopika181204/website-backend/utils"
	"go.uber.org/zap"
)

type OrderMailer interface {
	SendOrderConfirmation(emailTo string, data utils.OrderEmailData) error
}

// OrderConfirmationHook mails the customer after their order commits. The
// mail goes out on its own goroutine and a failure only logs.
func OrderConfirmationHook(mailer OrderMailer, log *zap.Logger) CommitHook {
	return func(_ context.Context, result CheckoutResult) {
		data := orderEmailData(result)
		go func() {
			if err := mailer.SendOrderConfirmation(result.Customer.Email, data); err != nil {
				log.Warn("Failed to send order confirmation",
					zap.Uint("order_id", result.OrderID),
					zap.Error(err))
				return
			}
			log.Debug("Order confirmation sent", zap.Uint("order_id", result.OrderID))
		}()
	}
}

func orderEmailData(result CheckoutResult) utils.OrderEmailData {
	data := utils.OrderEmailData{
		Name:          result.Customer.Name,
		OrderID:       result.OrderID,
		TrackingID:    result.TrackingID,
		PaymentMethod: string(result.PaymentMethod),
		Total:         result.Total.StringFixed(2),
	}
	if result.TransactionID != nil {
		data.TransactionID = *result.TransactionID
	}
	for _, item := range result.Items {
		data.Lines = append(data.Lines, utils.OrderEmailLine{
			Name:      item.ProductName,
			Quantity:  item.Quantity,
			UnitPrice: item.Price.StringFixed(2),
			Total:     item.TotalPrice.StringFixed(2),
		})
	}
	return data
}
