// Package event provides the observer list used by navmesh slots to raise
// navigation, selection and history notifications.
//
// A Feed delivers events synchronously, in subscription order, on the
// goroutine that publishes them. Handlers that panic are recovered and
// logged so one misbehaving observer cannot break a transition or starve
// the remaining observers.
//
// Subscribing the same Subscriber value twice stores it once; Subscribe
// reports false for the duplicate. Function handlers are not comparable and
// are tracked by the subscription ID returned from SubscribeFunc instead.
package event
