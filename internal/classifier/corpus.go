package classifier

// DefaultCorpus returns the built-in labeled training set. It bootstraps a
// usable model before any operator-reviewed emails exist in the database;
// retraining merges reviewed inbound emails on top of it.
func DefaultCorpus() []Example {
	return []Example{
		// Cargo circulars
		{Label: LabelCargo, Text: "New Cargo Inquiry - 500 MT Steel Pipes. We have a cargo of 500 metric tons of steel pipes ready for shipment from Shanghai to Rotterdam. Looking for suitable vessel."},
		{Label: LabelCargo, Text: "Urgent: Container booking needed. Need to book 20 TEU containers for electronics shipment. Origin: Shenzhen, Destination: Hamburg"},
		{Label: LabelCargo, Text: "Bulk cargo - Grain shipment. 50,000 MT wheat cargo available ex Brazil ports. Looking for Panamax vessel for voyage to Mediterranean"},
		{Label: LabelCargo, Text: "Project cargo inquiry. Heavy lift cargo consisting of turbines and generators. Total weight 200 MT. Need specialized vessel with cranes"},
		{Label: LabelCargo, Text: "Chemical tanker cargo. 5000 MT caustic soda solution for shipment. IMO Class 8. Need chemical tanker with stainless steel tanks"},
		{Label: LabelCargo, Text: "Coal shipment inquiry. Steam coal cargo 75,000 MT available at Indonesian ports. Looking for Capesize vessel"},
		{Label: LabelCargo, Text: "Reefer cargo - Frozen food. 1000 MT frozen chicken cargo. Temperature requirement -18C. Need reefer vessel or containers"},
		{Label: LabelCargo, Text: "Iron ore cargo tender. Iron ore fines 170,000 MT from Australia to China. Capesize vessel required"},
		{Label: LabelCargo, Text: "LNG cargo spot sale. LNG cargo 145,000 cbm available for spot sale. Loading port: Qatar, discharge options Asia"},
		{Label: LabelCargo, Text: "Cement cargo booking. Bulk cement 10,000 MT in bags. From Vietnam to Philippines. Need geared vessel"},
		{Label: LabelCargo, Text: "Scrap metal cargo. HMS 1&2 scrap metal 5,000 MT ready for loading. Need bulk carrier with grabs"},
		{Label: LabelCargo, Text: "Timber logs shipment. Timber logs from West Africa to China. Volume 15,000 cbm. Need log carrier"},
		{Label: LabelCargo, Text: "Bagged rice cargo. Rice in 50kg bags, total 8,000 MT. From Thailand to West Africa ports"},
		{Label: LabelCargo, Text: "Automotive parts in containers. Auto parts shipment, 40 x 40ft containers. From Germany to USA East Coast"},
		{Label: LabelCargo, Text: "Crude oil cargo tender. Crude oil cargo 2 million barrels available. Loading at Middle East ports"},
		{Label: LabelCargo, Text: "Fertilizer enquiry. 25,000 MT urea in bulk ex Black Sea, laycan 10-15 June, discharge Mundra. SF 45 cuft. Geared tonnage preferred"},
		{Label: LabelCargo, Text: "Sugar cargo firm. 30,000 mts raw sugar Santos to Alexandria, laycan 01/07-08/07, stowage factor 1.30 m3/mt"},

		// Vessel position lists
		{Label: LabelVessel, Text: "MV Pacific Dream - Open for cargo. Vessel MV Pacific Dream, Handymax bulk carrier, DWT 58,000 MT, open at Singapore from next week. Ready for grain/coal cargoes"},
		{Label: LabelVessel, Text: "Container vessel available. Container vessel 8,500 TEU capacity available for charter. Current position Mediterranean. Can accommodate reefer containers"},
		{Label: LabelVessel, Text: "Tanker vessel for spot charter. Product tanker, 50,000 DWT, double hull, available for spot charter. All certificates valid. Position: Persian Gulf"},
		{Label: LabelVessel, Text: "Bulk carrier open position. Panamax bulk carrier, 75,000 DWT, 5 holds/5 hatches, geared with 4x30T cranes. Open Japan next month"},
		{Label: LabelVessel, Text: "Chemical tanker available. Chemical tanker 20,000 DWT, stainless steel tanks, IMO II/III. Valid certificates. Open Houston area"},
		{Label: LabelVessel, Text: "VLCC for time charter. VLCC 300,000 DWT available for 1-year time charter. Double hull, 15 years old. All surveys passed"},
		{Label: LabelVessel, Text: "General cargo vessel. General cargo vessel 12,000 DWT with box-shaped holds. Good for project cargo. Open Mediterranean"},
		{Label: LabelVessel, Text: "LNG carrier available. LNG carrier 155,000 cbm capacity, membrane type, available for spot or term charter"},
		{Label: LabelVessel, Text: "Capesize bulk carrier. Capesize vessel 180,000 DWT open Brazil. Suitable for iron ore and coal shipments"},
		{Label: LabelVessel, Text: "Multipurpose vessel MPP. MPP vessel 8,000 DWT with 2x120T cranes. Suitable for containers, bulk and breakbulk cargo"},
		{Label: LabelVessel, Text: "Feeder vessel 1,700 TEU. Small container vessel 1,700 TEU available for charter. Ideal for feeder service"},
		{Label: LabelVessel, Text: "Oil tanker Aframax size. Aframax tanker 115,000 DWT, ice class, available Baltic Sea area"},
		{Label: LabelVessel, Text: "Car carrier PCTC available. Pure car truck carrier 6,500 cars capacity. Available for charter Asia-Europe trade"},
		{Label: LabelVessel, Text: "Heavy lift vessel with cranes. Heavy lift vessel with 2x400T cranes. Suitable for project cargo and offshore equipment"},
		{Label: LabelVessel, Text: "Handysize bulk carrier prompt. Handysize 35,000 DWT prompt vessel available South America east coast"},
		{Label: LabelVessel, Text: "MV Golden Wave open Singapore. M/V Golden Wave, 61,000 dwt, grain 72,000 cbm bale 69,500 cbm, geared 4x30t, open Singapore 12-16 May, speed 13 knots"},
		{Label: LabelVessel, Text: "Supramax open ECSA. Supramax 56,800 dwt open Santos 20-25 March, box shaped holds, open hatch, seeking grain or sugar employment"},

		// Everything else
		{Label: LabelOther, Text: "Weekly market newsletter. Dry bulk indices edged higher this week. Click here to read the full report or unsubscribe from this mailing list"},
		{Label: LabelOther, Text: "Invoice attached. Please find attached invoice INV-2024-118 for port agency services. Payment due within 30 days"},
		{Label: LabelOther, Text: "Meeting reschedule. Can we move tomorrow's call to 3pm? The conference room is double booked"},
		{Label: LabelOther, Text: "Webinar invitation. Join our free webinar on digital transformation in logistics. Register now, seats are limited"},
		{Label: LabelOther, Text: "Out of office. I am currently out of the office with limited email access and will respond on my return"},
		{Label: LabelOther, Text: "IT maintenance notice. The mail server will be unavailable Saturday night for scheduled maintenance. No action required"},
		{Label: LabelOther, Text: "Season greetings. Wishing you and your team a happy holiday season and a prosperous new year from all of us"},
		{Label: LabelOther, Text: "Subscription confirmation. Thank you for subscribing to our daily newsletter. You can unsubscribe at any time using the link below"},
	}
}
